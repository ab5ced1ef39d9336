package conf

import (
	"strconv"

	"github.com/ayushbarthwal/eatsafe/internal/secrets"
)

// resolveSecrets replaces ${VAR} and file: references in credential
// settings with their values.
func resolveSecrets(s *Settings) error {
	fields := map[string]*string{
		"database.mysql.password":    &s.Database.MySQL.Password,
		"database.postgres.password": &s.Database.Postgres.Password,
		"backup.sftp.password":       &s.Backup.SFTP.Password,
		"backup.s3.accesskeyid":      &s.Backup.S3.AccessKeyID,
		"backup.s3.secretaccesskey":  &s.Backup.S3.SecretAccessKey,
		"alerts.mqtt.password":       &s.Alerts.MQTT.Password,
		"telemetry.sentry.dsn":       &s.Telemetry.Sentry.DSN,
	}
	for i := range s.Alerts.Shoutrrr.URLs {
		fields["alerts.shoutrrr.urls["+strconv.Itoa(i)+"]"] = &s.Alerts.Shoutrrr.URLs[i]
	}
	return secrets.ResolveAll(fields)
}
