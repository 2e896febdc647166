package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "simvis.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir"`
	CompressOutput bool   `json:"compressOutput"`
}

// SQLiteConfig holds settings for the SQLite storage backend
type SQLiteConfig struct {
	Path          string        `json:"path"`
	FlushInterval time.Duration `json:"flushInterval"`
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	Database string `json:"database"`
}

// WebSocketConfig holds settings for the streaming backend
type WebSocketConfig struct {
	URL    string `json:"serverUrl"`
	Secret string `json:"apiKey"`
}

// StorageConfig selects and configures the frame storage backend
type StorageConfig struct {
	Type      string          `json:"type"`
	Memory    MemoryConfig    `json:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite"`
	Postgres  DBConfig        `json:"-"`
	WebSocket WebSocketConfig `json:"-"`
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled"`
	ServiceName  string        `json:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout"`
	Endpoint     string        `json:"endpoint"`
	Insecure     bool          `json:"insecure"`
}

// GraylogConfig holds the GELF log sink settings
type GraylogConfig struct {
	Enabled bool   `json:"enabled"`
	Address string `json:"address"`
	Level   string `json:"level"`
}

// InfluxConfig holds InfluxDB settings for tick statistics
type InfluxConfig struct {
	Enabled  bool   `json:"enabled"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	Protocol string `json:"protocol"`
	Token    string `json:"token"`
	Org      string `json:"org"`
	Bucket   string `json:"bucket"`
}

// ResourceConfig configures image and font loading
type ResourceConfig struct {
	FontDirs    []string      `json:"fontDirs"`
	DefaultFont string        `json:"defaultFont"`
	HTTPTimeout time.Duration `json:"httpTimeout"`
}

// ScenarioConfig drives the demo scenario. Angles are in degrees.
type ScenarioConfig struct {
	Duration     time.Duration `json:"duration"`
	Step         time.Duration `json:"step"`
	Start        string        `json:"start"` // "lon,lat,alt"
	LonStep      float64       `json:"lonStep"`
	Name         string        `json:"name"`
	Icon         string        `json:"icon"`
	Scale        float64       `json:"scale"`
	PointSize    float64       `json:"pointSize"`
	BeamHWidth   float64       `json:"beamHorizontalWidth"`
	BeamVWidth   float64       `json:"beamVerticalWidth"`
	BeamRange    float64       `json:"beamRange"`
	GateWidth    float64       `json:"gateWidth"`
	GateMinRange float64       `json:"gateMinRange"`
	GateMaxRange float64       `json:"gateMaxRange"`
	Realtime     bool          `json:"realtime"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./simvislogs")

	viper.SetDefault("resources.fontDirs", []string{"./fonts"})
	viper.SetDefault("resources.defaultFont", "arialbd.ttf")
	viper.SetDefault("resources.httpTimeout", "10s")

	viper.SetDefault("scenario.duration", "60s")
	viper.SetDefault("scenario.step", "10ms")
	viper.SetDefault("scenario.start", "2.0,35.0,10000")
	viper.SetDefault("scenario.lonStep", 0.001)
	viper.SetDefault("scenario.name", "AB-652")
	viper.SetDefault("scenario.icon", "https://readymap.org/readymap/filemanager/download/public/icons/airport.png")
	viper.SetDefault("scenario.scale", 2.0)
	viper.SetDefault("scenario.pointSize", 24.0)
	viper.SetDefault("scenario.beamHorizontalWidth", 30.0)
	viper.SetDefault("scenario.beamVerticalWidth", 25.0)
	viper.SetDefault("scenario.beamRange", 35000.0)
	viper.SetDefault("scenario.gateWidth", 5.0)
	viper.SetDefault("scenario.gateMinRange", 20000.0)
	viper.SetDefault("scenario.gateMaxRange", 30000.0)
	viper.SetDefault("scenario.realtime", false)

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./recordings")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "./recordings/simvis.db")
	viper.SetDefault("storage.sqlite.flushInterval", "2s")

	viper.SetDefault("api.serverUrl", "ws://localhost:5000/ingest")
	viper.SetDefault("api.apiKey", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "simvis")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "simvis-metrics")
	viper.SetDefault("influx.bucket", "simvis-sync")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")
	viper.SetDefault("graylog.level", "info")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "simvis")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetStorageConfig returns the storage backend configuration.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path:          viper.GetString("storage.sqlite.path"),
			FlushInterval: viper.GetDuration("storage.sqlite.flushInterval"),
		},
		Postgres: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
		WebSocket: WebSocketConfig{
			URL:    viper.GetString("api.serverUrl"),
			Secret: viper.GetString("api.apiKey"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry configuration.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetGraylogConfig returns the GELF sink configuration.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
		Level:   viper.GetString("graylog.level"),
	}
}

// GetInfluxConfig returns the InfluxDB configuration.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
}

// GetResourceConfig returns the resource loader configuration.
func GetResourceConfig() ResourceConfig {
	return ResourceConfig{
		FontDirs:    viper.GetStringSlice("resources.fontDirs"),
		DefaultFont: viper.GetString("resources.defaultFont"),
		HTTPTimeout: viper.GetDuration("resources.httpTimeout"),
	}
}

// GetScenarioConfig returns the demo scenario configuration.
func GetScenarioConfig() ScenarioConfig {
	return ScenarioConfig{
		Duration:     viper.GetDuration("scenario.duration"),
		Step:         viper.GetDuration("scenario.step"),
		Start:        viper.GetString("scenario.start"),
		LonStep:      viper.GetFloat64("scenario.lonStep"),
		Name:         viper.GetString("scenario.name"),
		Icon:         viper.GetString("scenario.icon"),
		Scale:        viper.GetFloat64("scenario.scale"),
		PointSize:    viper.GetFloat64("scenario.pointSize"),
		BeamHWidth:   viper.GetFloat64("scenario.beamHorizontalWidth"),
		BeamVWidth:   viper.GetFloat64("scenario.beamVerticalWidth"),
		BeamRange:    viper.GetFloat64("scenario.beamRange"),
		GateWidth:    viper.GetFloat64("scenario.gateWidth"),
		GateMinRange: viper.GetFloat64("scenario.gateMinRange"),
		GateMaxRange: viper.GetFloat64("scenario.gateMaxRange"),
		Realtime:     viper.GetBool("scenario.realtime"),
	}
}
