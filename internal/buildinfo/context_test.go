package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextGetters(t *testing.T) {
	tests := []struct {
		name          string
		ctx           *Context
		wantVersion   string
		wantBuildDate string
		wantCommit    string
	}{
		{
			name:          "nil context",
			ctx:           nil,
			wantVersion:   UnknownValue,
			wantBuildDate: UnknownValue,
			wantCommit:    UnknownValue,
		},
		{
			name:          "empty values",
			ctx:           NewContext("", "", ""),
			wantVersion:   UnknownValue,
			wantBuildDate: UnknownValue,
			wantCommit:    UnknownValue,
		},
		{
			name:          "pre-release version",
			ctx:           NewContext("1.0.0-beta.1", "2025-01-01T12:00:00Z", "abc123"),
			wantVersion:   "1.0.0-beta.1",
			wantBuildDate: "2025-01-01T12:00:00Z",
			wantCommit:    "abc123",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantVersion, tt.ctx.GetVersion())
			assert.Equal(t, tt.wantBuildDate, tt.ctx.GetBuildDate())
			assert.Equal(t, tt.wantCommit, tt.ctx.GetCommit())
		})
	}
}

func TestContextString(t *testing.T) {
	c := NewContext("1.2.0", "2025-03-01", "deadbeef")
	assert.Equal(t, "eatsafe 1.2.0 (commit deadbeef, built 2025-03-01)", c.String())
	assert.Equal(t, "eatsafe unknown (commit unknown, built unknown)", NewContext("", "", "").String())
}

func TestCurrentImplementsBuildInfo(t *testing.T) {
	var bi BuildInfo = Current()
	assert.NotEmpty(t, bi.GetVersion())
	assert.NotEmpty(t, bi.GetCommit())
}
