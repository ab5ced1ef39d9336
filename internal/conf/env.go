// env.go: environment variable bindings and validation
package conf

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// envBinding maps config keys to environment variables. The first variable
// that is set wins, so the legacy PORT is honoured after EATSAFE_PORT.
type envBinding struct {
	ConfigKey string
	EnvVars   []string
	Validate  func(string) error
}

func getEnvBindings() []envBinding {
	return []envBinding{
		{"debug", []string{"EATSAFE_DEBUG"}, validateEnvBool},

		// Web server
		{"webserver.host", []string{"EATSAFE_HOST"}, nil},
		{"webserver.port", []string{"EATSAFE_PORT", "PORT"}, validateEnvPort},

		// Database
		{"database.type", []string{"EATSAFE_DB_TYPE"}, validateEnvDBType},
		{"database.sqlite.path", []string{"EATSAFE_SQLITE_PATH"}, nil},
		{"database.mysql.host", []string{"EATSAFE_MYSQL_HOST"}, nil},
		{"database.mysql.port", []string{"EATSAFE_MYSQL_PORT"}, validateEnvPort},
		{"database.mysql.username", []string{"EATSAFE_MYSQL_USER"}, nil},
		{"database.mysql.password", []string{"EATSAFE_MYSQL_PASSWORD"}, nil},
		{"database.mysql.database", []string{"EATSAFE_MYSQL_DATABASE"}, nil},
		{"database.postgres.host", []string{"EATSAFE_POSTGRES_HOST"}, nil},
		{"database.postgres.port", []string{"EATSAFE_POSTGRES_PORT"}, validateEnvPort},
		{"database.postgres.username", []string{"EATSAFE_POSTGRES_USER"}, nil},
		{"database.postgres.password", []string{"EATSAFE_POSTGRES_PASSWORD"}, nil},
		{"database.postgres.database", []string{"EATSAFE_POSTGRES_DATABASE"}, nil},

		// Quality readings
		{"quality.readingsource", []string{"EATSAFE_READING_SOURCE"}, validateEnvReadingSource},
		{"quality.sensor.url", []string{"EATSAFE_SENSOR_URL"}, validateEnvURL},

		// Backup
		{"backup.local.path", []string{"EATSAFE_BACKUP_PATH"}, nil},
		{"backup.s3.bucket", []string{"EATSAFE_S3_BUCKET"}, nil},
		{"backup.s3.region", []string{"EATSAFE_S3_REGION"}, nil},
		{"backup.s3.endpoint", []string{"EATSAFE_S3_ENDPOINT"}, validateEnvURL},
		{"backup.sftp.password", []string{"EATSAFE_SFTP_PASSWORD"}, nil},

		// Alerts
		{"alerts.mqtt.broker", []string{"EATSAFE_MQTT_BROKER"}, validateEnvURL},
		{"alerts.mqtt.username", []string{"EATSAFE_MQTT_USER"}, nil},
		{"alerts.mqtt.password", []string{"EATSAFE_MQTT_PASSWORD"}, nil},

		// Telemetry
		{"telemetry.sentry.dsn", []string{"EATSAFE_SENTRY_DSN"}, validateEnvURL},
		{"logging.default_level", []string{"EATSAFE_LOG_LEVEL"}, validateEnvLogLevel},
	}
}

// bindEnvVars binds every environment variable and validates those that are
// set. All problems are reported together.
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		args := append([]string{binding.ConfigKey}, binding.EnvVars...)
		if err := viper.BindEnv(args...); err != nil {
			warnings = append(warnings, fmt.Sprintf("failed to bind %s: %v", strings.Join(binding.EnvVars, "/"), err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		for _, env := range binding.EnvVars {
			value := os.Getenv(env)
			if value == "" {
				continue
			}
			if err := binding.Validate(value); err != nil {
				warnings = append(warnings, fmt.Sprintf("invalid %s value: %v", env, err))
			}
			break
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}
	return nil
}

func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(value); err != nil {
		return fmt.Errorf("%q is not a boolean", value)
	}
	return nil
}

func validateEnvPort(value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%q is not a port number", value)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", port)
	}
	return nil
}

func validateEnvDBType(value string) error {
	switch strings.ToLower(value) {
	case DBTypeSQLite, DBTypeMySQL, DBTypePostgres:
		return nil
	}
	return fmt.Errorf("database type must be %s, %s or %s, got %q", DBTypeSQLite, DBTypeMySQL, DBTypePostgres, value)
}

func validateEnvReadingSource(value string) error {
	switch strings.ToLower(value) {
	case ReadingSourceRandom, ReadingSourceHTTP:
		return nil
	}
	return fmt.Errorf("reading source must be %s or %s, got %q", ReadingSourceRandom, ReadingSourceHTTP, value)
}

func validateEnvURL(value string) error {
	u, err := url.Parse(value)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("URL needs a scheme and host")
	}
	return nil
}

func validateEnvLogLevel(value string) error {
	switch strings.ToLower(value) {
	case "trace", "debug", "info", "warn", "warning", "error":
		return nil
	}
	return fmt.Errorf("unknown log level %q", value)
}
