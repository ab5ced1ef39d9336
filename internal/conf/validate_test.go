package conf

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSettings() *Settings {
	s := &Settings{}
	s.WebServer.Port = 5000
	s.WebServer.RateLimit = 10
	s.WebServer.RateBurst = 20
	s.Database.Type = DBTypeSQLite
	s.Database.SQLite.Path = "eatsafe.db"
	s.Quality.ReadingSource = ReadingSourceRandom
	s.Backup.Enabled = true
	s.Backup.Targets = []string{BackupTargetLocal}
	s.Backup.Local.Path = "backups"
	s.Alerts.MinRisk = "High Risk"
	s.Telemetry.Sentry.SampleRate = 1
	s.Telemetry.Metrics.Enabled = true
	s.Telemetry.Metrics.Path = "/metrics"
	return s
}

func TestValidateSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Settings)
		wantErr string
	}{
		{"valid", func(*Settings) {}, ""},
		{"bad port", func(s *Settings) { s.WebServer.Port = 0 }, "webserver.port"},
		{"burst missing", func(s *Settings) { s.WebServer.RateBurst = 0 }, "rateburst"},
		{"unknown db", func(s *Settings) { s.Database.Type = "oracle" }, "database.type"},
		{"mysql incomplete", func(s *Settings) { s.Database.Type = DBTypeMySQL }, "database.mysql.host"},
		{"postgres complete", func(s *Settings) {
			s.Database.Type = DBTypePostgres
			s.Database.Postgres = SQLServerSettings{Host: "db", Port: 5432, Username: "u", Database: "eatsafe"}
		}, ""},
		{"http source without url", func(s *Settings) {
			s.Quality.ReadingSource = ReadingSourceHTTP
			s.Quality.Sensor.Timeout = time.Second
		}, "quality.sensor.url"},
		{"http source with ftp url", func(s *Settings) {
			s.Quality.ReadingSource = ReadingSourceHTTP
			s.Quality.Sensor.URL = "ftp://sensor.local/latest"
			s.Quality.Sensor.Timeout = time.Second
		}, "scheme"},
		{"unknown backup target", func(s *Settings) { s.Backup.Targets = []string{"dropbox"} }, "dropbox"},
		{"sftp without credentials", func(s *Settings) {
			s.Backup.Targets = []string{BackupTargetSFTP}
			s.Backup.SFTP.Host = "backup.local"
			s.Backup.SFTP.Username = "eatsafe"
		}, "password or keyfile"},
		{"s3 without bucket", func(s *Settings) { s.Backup.Targets = []string{"S3"} }, "backup.s3.bucket"},
		{"disabled backup skips checks", func(s *Settings) {
			s.Backup.Enabled = false
			s.Backup.Targets = []string{"dropbox"}
		}, ""},
		{"bad min risk", func(s *Settings) { s.Alerts.MinRisk = "severe" }, "alerts.minrisk"},
		{"mqtt without broker", func(s *Settings) {
			s.Alerts.MQTT.Enabled = true
			s.Alerts.MQTT.Topic = "t"
		}, "alerts.mqtt.broker"},
		{"mqtt bad qos", func(s *Settings) {
			s.Alerts.MQTT = MQTTSettings{Enabled: true, Broker: "tcp://b:1883", Topic: "t", QoS: 3}
		}, "qos"},
		{"shoutrrr without urls", func(s *Settings) { s.Alerts.Shoutrrr.Enabled = true }, "shoutrrr.urls"},
		{"sentry without dsn", func(s *Settings) { s.Telemetry.Sentry.Enabled = true }, "sentry.dsn"},
		{"metrics path", func(s *Settings) { s.Telemetry.Metrics.Path = "metrics" }, "metrics.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := validSettings()
			tt.mutate(s)

			err := ValidateSettings(s)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateSettingsNormalizesTargets(t *testing.T) {
	t.Parallel()

	s := validSettings()
	s.Backup.Targets = []string{" Local "}
	require.NoError(t, ValidateSettings(s))
	assert.Equal(t, []string{BackupTargetLocal}, s.Backup.Targets)
}
