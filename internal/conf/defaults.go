// defaults.go: default values for settings
package conf

import (
	"time"

	"github.com/spf13/viper"

	"github.com/ayushbarthwal/eatsafe/internal/logger"
)

// setDefaultConfig registers default values for every setting.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("webserver.host", "")
	viper.SetDefault("webserver.port", 5000)
	viper.SetDefault("webserver.corsorigins", []string{"*"})
	viper.SetDefault("webserver.bodylimit", "1M")
	viper.SetDefault("webserver.ratelimit", 20.0)
	viper.SetDefault("webserver.rateburst", 40)
	viper.SetDefault("webserver.readtimeout", 30*time.Second)
	viper.SetDefault("webserver.writetimeout", 30*time.Second)

	viper.SetDefault("database.type", DBTypeSQLite)
	viper.SetDefault("database.sqlite.path", "eatsafe.db")
	viper.SetDefault("database.mysql.host", "localhost")
	viper.SetDefault("database.mysql.port", 3306)
	viper.SetDefault("database.mysql.database", "eatsafe")
	viper.SetDefault("database.postgres.host", "localhost")
	viper.SetDefault("database.postgres.port", 5432)
	viper.SetDefault("database.postgres.database", "eatsafe")
	viper.SetDefault("database.postgres.sslmode", "disable")
	viper.SetDefault("database.slowthreshold", 200*time.Millisecond)
	viper.SetDefault("database.seed", false)

	viper.SetDefault("quality.readingsource", ReadingSourceRandom)
	viper.SetDefault("quality.sensor.timeout", 5*time.Second)
	viper.SetDefault("quality.randomseed", 0)

	viper.SetDefault("cache.dashboardttl", 30*time.Second)

	viper.SetDefault("backup.enabled", true)
	viper.SetDefault("backup.targets", []string{BackupTargetLocal})
	viper.SetDefault("backup.retention", 10)
	viper.SetDefault("backup.local.path", "backups")
	viper.SetDefault("backup.sftp.port", 22)
	viper.SetDefault("backup.sftp.path", "eatsafe-backups")
	viper.SetDefault("backup.sftp.timeout", 30*time.Second)
	viper.SetDefault("backup.s3.region", "us-east-1")
	viper.SetDefault("backup.s3.prefix", "eatsafe/")

	viper.SetDefault("alerts.minrisk", "High Risk")
	viper.SetDefault("alerts.mqtt.enabled", false)
	viper.SetDefault("alerts.mqtt.topic", "eatsafe/alerts")
	viper.SetDefault("alerts.mqtt.clientid", "eatsafe")
	viper.SetDefault("alerts.mqtt.qos", 1)
	viper.SetDefault("alerts.shoutrrr.enabled", false)
	viper.SetDefault("alerts.shoutrrr.timeout", 10*time.Second)

	viper.SetDefault("telemetry.sentry.enabled", false)
	viper.SetDefault("telemetry.sentry.environment", "production")
	viper.SetDefault("telemetry.sentry.samplerate", 1.0)
	viper.SetDefault("telemetry.metrics.enabled", true)
	viper.SetDefault("telemetry.metrics.path", "/metrics")

	viper.SetDefault("logging.default_level", logger.DefaultLogLevel)
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", logger.DefaultConsoleEnabled)
	viper.SetDefault("logging.console.level", logger.DefaultLogLevel)
	viper.SetDefault("logging.file_output.enabled", logger.DefaultFileEnabled)
	viper.SetDefault("logging.file_output.path", logger.DefaultLogPath)
	viper.SetDefault("logging.file_output.level", logger.DefaultLogLevel)
}
