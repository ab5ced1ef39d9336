// Package secrets resolves credential references in configuration values.
//
// A value is either a literal, a string with ${VAR} or ${VAR:-default}
// references, or "file:<path>" naming a Docker or Kubernetes secret file.
// Secret values are never logged.
package secrets

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
)

const (
	// FilePrefix marks a value read from a file.
	FilePrefix = "file:"

	// maxSecretFileSize limits secret file reads; secrets are tokens and
	// passwords, not documents.
	maxSecretFileSize = 64 * 1024
)

func secretError(msg string) *errors.ErrorBuilder {
	return errors.Newf("%s", msg).
		Component("secrets").
		Category(errors.CategoryConfiguration)
}

// ExpandString resolves ${VAR} and ${VAR:-default} references. A referenced
// variable that is unset and has no default is an error.
func ExpandString(s string) (string, error) {
	if s == "" {
		return "", nil
	}

	var missing []string
	expanded := os.Expand(s, func(key string) string {
		name, fallback, hasFallback := strings.Cut(key, ":-")
		if value := os.Getenv(name); value != "" {
			return value
		}
		if hasFallback {
			return fallback
		}
		missing = append(missing, name)
		return ""
	})

	if len(missing) > 0 {
		return "", secretError("missing required environment variable(s): "+strings.Join(missing, ", ")).
			Context("variables", strings.Join(missing, ",")).
			Build()
	}
	return expanded, nil
}

// ReadFile reads a secret file, trimming trailing newlines. Files readable by
// group or others are accepted with a warning.
func ReadFile(path string) (string, error) {
	if path == "" {
		return "", secretError("secret file path is empty").Build()
	}
	cleanPath := filepath.Clean(path)

	info, err := os.Stat(cleanPath)
	if err != nil {
		return "", errors.New(err).
			Component("secrets").
			Category(errors.CategoryFileIO).
			Context("path", cleanPath).
			Build()
	}
	if !info.Mode().IsRegular() {
		return "", secretError("secret path is not a regular file").Context("path", cleanPath).Build()
	}
	if info.Size() > maxSecretFileSize {
		return "", secretError("secret file too large").
			Context("path", cleanPath).
			Context("max_bytes", maxSecretFileSize).
			Build()
	}
	if perm := info.Mode().Perm(); perm&0o077 != 0 {
		logger.Global().Module("secrets").Warn("secret file is readable by group or others",
			logger.String("path", cleanPath),
			logger.String("mode", perm.String()))
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", errors.New(err).
			Component("secrets").
			Category(errors.CategoryFileIO).
			Context("path", cleanPath).
			Build()
	}

	secret := strings.TrimRight(string(data), "\r\n")
	if secret == "" {
		return "", secretError("secret file is empty").Context("path", cleanPath).Build()
	}
	return secret, nil
}

// Resolve returns the secret value refers to.
func Resolve(value string) (string, error) {
	if path, ok := strings.CutPrefix(value, FilePrefix); ok {
		return ReadFile(path)
	}
	return ExpandString(value)
}

// ResolveAll resolves every field in place. Fields are addressed by name so
// errors can say which setting failed.
func ResolveAll(fields map[string]*string) error {
	var errs []error
	for name, field := range fields {
		if field == nil || *field == "" {
			continue
		}
		v, err := Resolve(*field)
		if err != nil {
			errs = append(errs, errors.New(err).
				Component("secrets").
				Category(errors.CategoryConfiguration).
				Context("setting", name).
				Build())
			continue
		}
		*field = v
	}
	return errors.Join(errs...)
}
