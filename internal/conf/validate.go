// validate.go: settings validation
package conf

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ayushbarthwal/eatsafe/internal/safety"
)

// ValidationError collects every problem found in a settings struct.
type ValidationError struct {
	Errors []string
}

func (ve ValidationError) Error() string {
	return fmt.Sprintf("validation errors: %s", strings.Join(ve.Errors, "; "))
}

// ValidateSettings checks the whole settings tree and normalizes enum-like
// strings to lower case.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	validators := []func(*Settings) []string{
		validateWebServerSettings,
		validateDatabaseSettings,
		validateQualitySettings,
		validateBackupSettings,
		validateAlertSettings,
		validateTelemetrySettings,
	}
	for _, validate := range validators {
		ve.Errors = append(ve.Errors, validate(settings)...)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

func validateWebServerSettings(s *Settings) []string {
	var errs []string
	ws := &s.WebServer
	if ws.Port < 1 || ws.Port > 65535 {
		errs = append(errs, fmt.Sprintf("webserver.port must be between 1 and 65535, got %d", ws.Port))
	}
	if ws.RateLimit < 0 {
		errs = append(errs, "webserver.ratelimit cannot be negative")
	}
	if ws.RateLimit > 0 && ws.RateBurst < 1 {
		errs = append(errs, "webserver.rateburst must be at least 1 when rate limiting is enabled")
	}
	return errs
}

func validateDatabaseSettings(s *Settings) []string {
	var errs []string
	db := &s.Database
	db.Type = strings.ToLower(strings.TrimSpace(db.Type))

	switch db.Type {
	case DBTypeSQLite:
		if db.SQLite.Path == "" {
			errs = append(errs, "database.sqlite.path is required")
		}
	case DBTypeMySQL:
		errs = append(errs, validateServer("database.mysql", &db.MySQL)...)
	case DBTypePostgres:
		errs = append(errs, validateServer("database.postgres", &db.Postgres)...)
	default:
		errs = append(errs, fmt.Sprintf("database.type must be %s, %s or %s, got %q",
			DBTypeSQLite, DBTypeMySQL, DBTypePostgres, db.Type))
	}
	return errs
}

func validateServer(prefix string, srv *SQLServerSettings) []string {
	var errs []string
	if srv.Host == "" {
		errs = append(errs, prefix+".host is required")
	}
	if srv.Port < 1 || srv.Port > 65535 {
		errs = append(errs, fmt.Sprintf("%s.port must be between 1 and 65535, got %d", prefix, srv.Port))
	}
	if srv.Username == "" {
		errs = append(errs, prefix+".username is required")
	}
	if srv.Database == "" {
		errs = append(errs, prefix+".database is required")
	}
	return errs
}

func validateQualitySettings(s *Settings) []string {
	var errs []string
	q := &s.Quality
	q.ReadingSource = strings.ToLower(strings.TrimSpace(q.ReadingSource))

	switch q.ReadingSource {
	case ReadingSourceRandom:
	case ReadingSourceHTTP:
		if err := validateHTTPURL(q.Sensor.URL); err != nil {
			errs = append(errs, "quality.sensor.url: "+err.Error())
		}
		if q.Sensor.Timeout <= 0 {
			errs = append(errs, "quality.sensor.timeout must be positive")
		}
	default:
		errs = append(errs, fmt.Sprintf("quality.readingsource must be %s or %s, got %q",
			ReadingSourceRandom, ReadingSourceHTTP, q.ReadingSource))
	}
	return errs
}

func validateBackupSettings(s *Settings) []string {
	b := &s.Backup
	if !b.Enabled {
		return nil
	}

	var errs []string
	if b.Retention < 0 {
		errs = append(errs, "backup.retention cannot be negative")
	}
	if len(b.Targets) == 0 {
		errs = append(errs, "backup.targets needs at least one target when backups are enabled")
	}
	for i, target := range b.Targets {
		target = strings.ToLower(strings.TrimSpace(target))
		b.Targets[i] = target
		switch target {
		case BackupTargetLocal:
			if b.Local.Path == "" {
				errs = append(errs, "backup.local.path is required")
			}
		case BackupTargetSFTP:
			if b.SFTP.Host == "" {
				errs = append(errs, "backup.sftp.host is required")
			}
			if b.SFTP.Username == "" {
				errs = append(errs, "backup.sftp.username is required")
			}
			if b.SFTP.Password == "" && b.SFTP.KeyFile == "" {
				errs = append(errs, "backup.sftp needs a password or keyfile")
			}
		case BackupTargetS3:
			if b.S3.Bucket == "" {
				errs = append(errs, "backup.s3.bucket is required")
			}
		default:
			errs = append(errs, fmt.Sprintf("unknown backup target %q", target))
		}
	}
	return errs
}

func validateAlertSettings(s *Settings) []string {
	var errs []string
	a := &s.Alerts

	if a.MinRisk != "" {
		if _, err := safety.ParseRiskLabel(a.MinRisk); err != nil {
			errs = append(errs, "alerts.minrisk: "+err.Error())
		}
	}
	if a.MQTT.Enabled {
		if a.MQTT.Broker == "" {
			errs = append(errs, "alerts.mqtt.broker is required when MQTT is enabled")
		}
		if a.MQTT.Topic == "" {
			errs = append(errs, "alerts.mqtt.topic is required when MQTT is enabled")
		}
		if a.MQTT.QoS < 0 || a.MQTT.QoS > 2 {
			errs = append(errs, fmt.Sprintf("alerts.mqtt.qos must be 0, 1 or 2, got %d", a.MQTT.QoS))
		}
	}
	if a.Shoutrrr.Enabled && len(a.Shoutrrr.URLs) == 0 {
		errs = append(errs, "alerts.shoutrrr.urls needs at least one URL when enabled")
	}
	return errs
}

func validateTelemetrySettings(s *Settings) []string {
	var errs []string
	t := &s.Telemetry
	if t.Sentry.Enabled && t.Sentry.DSN == "" {
		errs = append(errs, "telemetry.sentry.dsn is required when Sentry is enabled")
	}
	if t.Sentry.SampleRate < 0 || t.Sentry.SampleRate > 1 {
		errs = append(errs, "telemetry.sentry.samplerate must be between 0 and 1")
	}
	if t.Metrics.Enabled && !strings.HasPrefix(t.Metrics.Path, "/") {
		errs = append(errs, "telemetry.metrics.path must start with /")
	}
	return errs
}

func validateHTTPURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}
