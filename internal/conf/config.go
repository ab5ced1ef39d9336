// config.go: settings struct and the functions that load and save it.
package conf

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// Supported database backends.
const (
	DBTypeSQLite   = "sqlite"
	DBTypeMySQL    = "mysql"
	DBTypePostgres = "postgres"
)

// Supported reading sources for auto-run quality tests.
const (
	ReadingSourceRandom = "random"
	ReadingSourceHTTP   = "http"
)

// Supported backup targets.
const (
	BackupTargetLocal = "local"
	BackupTargetSFTP  = "sftp"
	BackupTargetS3    = "s3"
)

// WebServerSettings configures the HTTP API.
type WebServerSettings struct {
	Host         string        // listen address, empty for all interfaces
	Port         int           // listen port
	CORSOrigins  []string      // allowed CORS origins, "*" for any
	BodyLimit    string        // max request body, echo syntax e.g. "1M"
	RateLimit    float64       // requests per second per client, 0 disables
	RateBurst    int           // burst size for the rate limiter
	ReadTimeout  time.Duration // http.Server read timeout
	WriteTimeout time.Duration // http.Server write timeout
}

// SQLiteSettings configures the embedded database.
type SQLiteSettings struct {
	Path string // database file
}

// SQLServerSettings configures a networked database server.
type SQLServerSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	Database string
	SSLMode  string // postgres only
}

// DatabaseSettings selects and configures the store.
type DatabaseSettings struct {
	Type          string        // sqlite, mysql or postgres
	SQLite        SQLiteSettings
	MySQL         SQLServerSettings
	Postgres      SQLServerSettings
	SlowThreshold time.Duration // queries slower than this are logged
	Seed          bool          // insert demo rows into an empty database
}

// SensorSettings configures the HTTP sensor feed.
type SensorSettings struct {
	URL     string
	Timeout time.Duration
}

// QualitySettings configures quality test execution.
type QualitySettings struct {
	ReadingSource string // random or http
	Sensor        SensorSettings
	RandomSeed    uint64 // 0 seeds from the runtime
}

// CacheSettings configures read caches.
type CacheSettings struct {
	DashboardTTL time.Duration
}

// LocalBackupSettings configures the local directory target.
type LocalBackupSettings struct {
	Path string
}

// SFTPBackupSettings configures the SFTP target.
type SFTPBackupSettings struct {
	Host           string
	Port           int
	Username       string
	Password       string
	KeyFile        string
	KnownHostsFile string
	Path           string
	Timeout        time.Duration
}

// S3BackupSettings configures the S3-compatible target.
type S3BackupSettings struct {
	Bucket          string
	Region          string
	Endpoint        string // optional, for MinIO and other S3-compatible stores
	Prefix          string
	PathStyle       bool
	AccessKeyID     string
	SecretAccessKey string
}

// BackupSettings configures database backups.
type BackupSettings struct {
	Enabled   bool
	Targets   []string // local, sftp, s3
	Retention int      // archives kept per target, 0 keeps all
	Local     LocalBackupSettings
	SFTP      SFTPBackupSettings
	S3        S3BackupSettings
}

// MQTTSettings configures the MQTT alert publisher.
type MQTTSettings struct {
	Enabled  bool
	Broker   string
	Topic    string
	ClientID string
	Username string
	Password string
	QoS      int
	Retain   bool
}

// ShoutrrrSettings configures chat and email alerts.
type ShoutrrrSettings struct {
	Enabled bool
	URLs    []string
	Timeout time.Duration
}

// AlertSettings configures contamination alerts.
type AlertSettings struct {
	MinRisk  string // lowest risk label that raises an alert
	MQTT     MQTTSettings
	Shoutrrr ShoutrrrSettings
}

// SentrySettings configures error telemetry.
type SentrySettings struct {
	Enabled     bool
	DSN         string
	Environment string
	SampleRate  float64
}

// MetricsSettings configures the Prometheus endpoint.
type MetricsSettings struct {
	Enabled bool
	Path    string
}

// TelemetrySettings groups observability settings.
type TelemetrySettings struct {
	Sentry  SentrySettings
	Metrics MetricsSettings
}

// Settings is the root configuration.
type Settings struct {
	Version   string `yaml:"-" mapstructure:"-"` // build version, set at startup
	Debug     bool
	WebServer WebServerSettings
	Database  DatabaseSettings
	Quality   QualitySettings
	Cache     CacheSettings
	Backup    BackupSettings
	Alerts    AlertSettings
	Telemetry TelemetrySettings
	Logging   logger.LoggingConfig
}

var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(fmt.Errorf("error unmarshaling config into struct: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}

	if err := resolveSecrets(settings); err != nil {
		return nil, fmt.Errorf("error resolving secrets: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settings, nil
}

// initViper sets defaults, binds the environment and reads the config file.
// A missing config file is created from the embedded default.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	for _, path := range GetDefaultConfigPaths() {
		viper.AddConfigPath(path)
	}

	setDefaultConfig()

	if err := bindEnvVars(); err != nil {
		return err
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return createDefaultConfig()
		}
		return errors.New(fmt.Errorf("fatal error reading config file: %w", err)).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Build()
	}
	return nil
}

// createDefaultConfig writes the embedded config.yaml to the first config path.
func createDefaultConfig() error {
	configPath := filepath.Join(GetDefaultConfigPaths()[0], "config.yaml")

	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return fmt.Errorf("error reading embedded config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return errors.New(fmt.Errorf("error creating directories for config file: %w", err)).
			Component("conf").
			Category(errors.CategoryFileIO).
			Build()
	}
	if err := os.WriteFile(configPath, data, 0o600); err != nil {
		return errors.New(fmt.Errorf("error writing default config file: %w", err)).
			Component("conf").
			Category(errors.CategoryFileIO).
			Build()
	}

	logger.Global().Module("conf").Info("created default config file", logger.String("path", configPath))
	viper.SetConfigFile(configPath)
	return viper.ReadInConfig()
}

// GetSettings returns the settings from the last successful Load.
func GetSettings() *Settings {
	settingsMutex.RLock()
	defer settingsMutex.RUnlock()
	return settingsInstance
}

// SaveYAMLConfig writes settings to configPath atomically.
func SaveYAMLConfig(configPath string, settings *Settings) error {
	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}
	return writeFileAtomic(configPath, data, 0o600)
}

// Sanitized returns a copy of s with credentials masked, safe to store
// alongside backups or show in diagnostics.
func (s *Settings) Sanitized() *Settings {
	c := *s
	c.Database.MySQL.Password = maskSecret(c.Database.MySQL.Password)
	c.Database.Postgres.Password = maskSecret(c.Database.Postgres.Password)
	c.Backup.SFTP.Password = maskSecret(c.Backup.SFTP.Password)
	c.Backup.S3.AccessKeyID = maskSecret(c.Backup.S3.AccessKeyID)
	c.Backup.S3.SecretAccessKey = maskSecret(c.Backup.S3.SecretAccessKey)
	c.Alerts.MQTT.Password = maskSecret(c.Alerts.MQTT.Password)
	c.Telemetry.Sentry.DSN = maskSecret(c.Telemetry.Sentry.DSN)

	urls := make([]string, len(c.Alerts.Shoutrrr.URLs))
	for i := range urls {
		urls[i] = maskSecret(c.Alerts.Shoutrrr.URLs[i])
	}
	c.Alerts.Shoutrrr.URLs = urls
	return &c
}

// MarshalSanitizedYAML renders the sanitized settings as YAML.
func (s *Settings) MarshalSanitizedYAML() ([]byte, error) {
	return yaml.Marshal(s.Sanitized())
}

func maskSecret(v string) string {
	if v == "" {
		return ""
	}
	return "********"
}
