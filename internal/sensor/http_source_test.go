package sensor

import (
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

const feedURL = "http://sensors.local/api/latest"

var fallback = safety.FixedSource{
	Lab: safety.LabReading{PH: 6.0, MoisturePct: 8.0, BacteriaCount: 250},
	Env: safety.Conditions{Temperature: 4.0, Humidity: 60.0},
}

func setupHTTPMock(t *testing.T) {
	t.Helper()
	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)
}

func newTestSource(t *testing.T) *HTTPSource {
	t.Helper()
	src, err := NewHTTPSource(feedURL, 0, fallback, WithLogger(logger.NewDiscardLogger()))
	require.NoError(t, err)
	return src
}

func TestNewHTTPSourceRequiresURL(t *testing.T) {
	_, err := NewHTTPSource("", 0, nil)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
}

func TestHTTPSourceFullPayload(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, feedURL,
		httpmock.NewStringResponder(http.StatusOK,
			`{"ph": 6.8, "moisturePct": 3.5, "bacteriaCount": 720, "temperature": 12.5, "humidity": 81}`))

	src := newTestSource(t)

	lab, err := src.LabReading(t.Context())
	require.NoError(t, err)
	assert.Equal(t, safety.LabReading{PH: 6.8, MoisturePct: 3.5, BacteriaCount: 720}, lab)

	env, err := src.Conditions(t.Context())
	require.NoError(t, err)
	assert.Equal(t, safety.Conditions{Temperature: 12.5, Humidity: 81}, env)

	assert.Equal(t, 2, httpmock.GetTotalCallCount())
}

func TestHTTPSourceReadingFetchesOnce(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, feedURL,
		httpmock.NewStringResponder(http.StatusOK,
			`{"ph": 6.8, "moisturePct": 3.5, "bacteriaCount": 720, "temperature": 12.5, "humidity": 81}`))

	var src safety.ReadingSource = newTestSource(t)
	lab, env, err := safety.ReadAll(t.Context(), src)
	require.NoError(t, err)
	assert.Equal(t, safety.LabReading{PH: 6.8, MoisturePct: 3.5, BacteriaCount: 720}, lab)
	assert.Equal(t, safety.Conditions{Temperature: 12.5, Humidity: 81}, env)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestHTTPSourceRejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    safety.LabReading
	}{
		{"negative_bacteria", `{"ph": 6.8, "moisturePct": 3.5, "bacteriaCount": -5}`,
			safety.LabReading{PH: 6.8, MoisturePct: 3.5, BacteriaCount: 250}},
		{"negative_moisture", `{"ph": 6.8, "moisturePct": -1.5, "bacteriaCount": 720}`,
			safety.LabReading{PH: 6.8, MoisturePct: 8.0, BacteriaCount: 720}},
		{"ph_above_scale", `{"ph": 15.2, "moisturePct": 3.5, "bacteriaCount": 720}`,
			safety.LabReading{PH: 6.0, MoisturePct: 3.5, BacteriaCount: 720}},
		{"ph_below_scale", `{"ph": -0.1, "moisturePct": 3.5, "bacteriaCount": 720}`,
			safety.LabReading{PH: 6.0, MoisturePct: 3.5, BacteriaCount: 720}},
		{"zero_values_kept", `{"ph": 0, "moisturePct": 0, "bacteriaCount": 0}`,
			safety.LabReading{PH: 0, MoisturePct: 0, BacteriaCount: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupHTTPMock(t)
			httpmock.RegisterResponder(http.MethodGet, feedURL,
				httpmock.NewStringResponder(http.StatusOK, tt.payload))

			lab, env, err := newTestSource(t).Reading(t.Context())
			require.NoError(t, err)
			assert.Equal(t, tt.want, lab)
			assert.Equal(t, fallback.Env, env)
		})
	}
}

func TestHTTPSourcePartialPayloadFallsBackPerField(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, feedURL,
		httpmock.NewStringResponder(http.StatusOK, `{"bacteriaCount": 640, "humidity": 90}`))

	src := newTestSource(t)

	lab, err := src.LabReading(t.Context())
	require.NoError(t, err)
	assert.Equal(t, safety.LabReading{PH: 6.0, MoisturePct: 8.0, BacteriaCount: 640}, lab)

	env, err := src.Conditions(t.Context())
	require.NoError(t, err)
	assert.Equal(t, safety.Conditions{Temperature: 4.0, Humidity: 90}, env)
}

func TestHTTPSourceFeedFailureUsesFallback(t *testing.T) {
	tests := []struct {
		name      string
		responder httpmock.Responder
	}{
		{"server_error", httpmock.NewStringResponder(http.StatusInternalServerError, "boom")},
		{"invalid_json", httpmock.NewStringResponder(http.StatusOK, `{invalid`)},
		{"transport_error", httpmock.NewErrorResponder(errors.NewStd("connection refused"))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setupHTTPMock(t)
			httpmock.RegisterResponder(http.MethodGet, feedURL, tt.responder)

			src := newTestSource(t)

			lab, err := src.LabReading(t.Context())
			require.NoError(t, err)
			assert.Equal(t, fallback.Lab, lab)

			env, err := src.Conditions(t.Context())
			require.NoError(t, err)
			assert.Equal(t, fallback.Env, env)
		})
	}
}

func TestFetchReportsErrors(t *testing.T) {
	setupHTTPMock(t)
	httpmock.RegisterResponder(http.MethodGet, feedURL,
		httpmock.NewStringResponder(http.StatusServiceUnavailable, ""))

	_, err := newTestSource(t).Fetch(t.Context())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryNetwork))

	httpmock.Reset()
	httpmock.RegisterResponder(http.MethodGet, feedURL,
		httpmock.NewStringResponder(http.StatusOK, `[1,2,3]`))
	_, err = newTestSource(t).Fetch(t.Context())
	require.Error(t, err)
	assert.True(t, errors.IsValidation(err))
}
