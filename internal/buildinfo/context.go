// Package buildinfo holds build-time metadata kept apart from user configuration.
package buildinfo

import (
	"fmt"
	"runtime/debug"
)

// UnknownValue is reported for metadata that was not injected at build time.
const UnknownValue = "unknown"

// Set with -ldflags "-X github.com/ayushbarthwal/eatsafe/internal/buildinfo.version=v1.2.3".
var (
	version   string
	buildDate string
	commit    string
)

// BuildInfo provides access to build-time metadata.
type BuildInfo interface {
	// GetVersion returns the release version
	GetVersion() string
	// GetBuildDate returns when the binary was built
	GetBuildDate() string
	// GetCommit returns the VCS revision the binary was built from
	GetCommit() string
}

// Context contains build-time metadata that is not user-configurable.
type Context struct {
	// Version holds the release tag
	Version string

	// BuildDate is the time when the binary was built
	BuildDate string

	// Commit is the VCS revision
	Commit string
}

// NewContext creates a Context from explicit values.
func NewContext(version, buildDate, commit string) *Context {
	return &Context{
		Version:   version,
		BuildDate: buildDate,
		Commit:    commit,
	}
}

// Current returns the metadata injected into this binary. The commit falls
// back to the revision the Go toolchain stamps into the build.
func Current() *Context {
	c := NewContext(version, buildDate, commit)
	if c.Commit == "" {
		c.Commit = vcsRevision()
	}
	return c
}

func vcsRevision() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" {
			if len(s.Value) > 12 {
				return s.Value[:12]
			}
			return s.Value
		}
	}
	return ""
}

func valueOrUnknown(v string) string {
	if v == "" {
		return UnknownValue
	}
	return v
}

// GetVersion implements BuildInfo.GetVersion
func (c *Context) GetVersion() string {
	if c == nil {
		return UnknownValue
	}
	return valueOrUnknown(c.Version)
}

// GetBuildDate implements BuildInfo.GetBuildDate
func (c *Context) GetBuildDate() string {
	if c == nil {
		return UnknownValue
	}
	return valueOrUnknown(c.BuildDate)
}

// GetCommit implements BuildInfo.GetCommit
func (c *Context) GetCommit() string {
	if c == nil {
		return UnknownValue
	}
	return valueOrUnknown(c.Commit)
}

// String formats the metadata for the version command.
func (c *Context) String() string {
	return fmt.Sprintf("eatsafe %s (commit %s, built %s)", c.GetVersion(), c.GetCommit(), c.GetBuildDate())
}
