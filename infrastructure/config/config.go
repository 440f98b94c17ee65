package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	domainconfig "mindgraph/domain/config"
)

// ConfigPathEnv names the environment variable holding the YAML file path
const ConfigPathEnv = "MINDGRAPH_CONFIG"

// Config holds all application configuration
type Config struct {
	// Server configuration
	ServerAddress string `yaml:"serverAddress" validate:"required"`
	Environment   string `yaml:"environment" validate:"oneof=development staging production"`
	LogLevel      string `yaml:"logLevel" validate:"oneof=debug info warn error"`
	EnableCORS    bool   `yaml:"enableCors"`

	// RateLimit caps requests per client per RateWindow; zero disables it
	RateLimit  int           `yaml:"rateLimit" validate:"gte=0"`
	RateWindow time.Duration `yaml:"rateWindow" validate:"gte=0"`

	// Lambda configuration
	IsLambda           bool   `yaml:"isLambda"`
	LambdaFunctionName string `yaml:"-"`

	Persistence PersistenceConfig `yaml:"persistence"`
	Events      EventsConfig      `yaml:"events"`
	Layout      LayoutConfig      `yaml:"layout"`
	Tracing     TracingConfig     `yaml:"tracing"`
	Metrics     MetricsConfig     `yaml:"metrics"`
	Editor      EditorConfig      `yaml:"editor"`

	// Keybinds maps action names to keys, e.g. createChildNode: "Ctrl+Enter"
	Keybinds map[string]string `yaml:"keybinds"`
}

// PersistenceConfig selects where maps are stored
type PersistenceConfig struct {
	Driver        string `yaml:"driver" validate:"oneof=memory dynamodb"`
	AWSRegion     string `yaml:"awsRegion"`
	DynamoDBTable string `yaml:"dynamoDBTable" validate:"required_if=Driver dynamodb"`
}

// EventsConfig selects where document events go
type EventsConfig struct {
	Driver       string `yaml:"driver" validate:"oneof=log eventbridge"`
	EventBusName string `yaml:"eventBusName" validate:"required_if=Driver eventbridge"`
	Source       string `yaml:"source" validate:"required"`
}

// LayoutConfig tunes the layout engine and its decorators
type LayoutConfig struct {
	Timeout           time.Duration `yaml:"timeout" validate:"gte=0"`
	NodeSpacing       float64       `yaml:"nodeSpacing" validate:"gt=0"`
	LayerSpacing      float64       `yaml:"layerSpacing" validate:"gt=0"`
	DefaultNodeWidth  float64       `yaml:"defaultNodeWidth" validate:"gt=0"`
	DefaultNodeHeight float64       `yaml:"defaultNodeHeight" validate:"gt=0"`
	Sweeps            int           `yaml:"sweeps" validate:"gte=1,lte=32"`

	BreakerEnabled          bool          `yaml:"breakerEnabled"`
	BreakerFailureThreshold float64       `yaml:"breakerFailureThreshold" validate:"gt=0,lte=1"`
	BreakerMinRequests      uint32        `yaml:"breakerMinRequests" validate:"gte=1"`
	BreakerTimeout          time.Duration `yaml:"breakerTimeout" validate:"gt=0"`

	CacheEnabled    bool          `yaml:"cacheEnabled"`
	CacheTTL        time.Duration `yaml:"cacheTTL" validate:"gte=0"`
	CacheMaxEntries int           `yaml:"cacheMaxEntries" validate:"gte=1"`
}

// TracingConfig configures OpenTelemetry export
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled"`
	Endpoint   string  `yaml:"endpoint" validate:"required_if=Enabled true"`
	SampleRate float64 `yaml:"sampleRate" validate:"gte=0,lte=1"`
	XRay       bool    `yaml:"xray"`
}

// MetricsConfig configures Prometheus and CloudWatch metrics
type MetricsConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Namespace  string `yaml:"namespace" validate:"required"`
	CloudWatch bool   `yaml:"cloudWatch"`
}

// EditorConfig holds editor behaviour switches
type EditorConfig struct {
	AutoLayout   bool `yaml:"autoLayout"`
	HistoryLimit int  `yaml:"historyLimit" validate:"gte=1"`
}

// Default returns the configuration used when nothing is overridden
func Default() *Config {
	domain := domainconfig.DefaultDomainConfig()
	return &Config{
		ServerAddress: ":8080",
		Environment:   "development",
		LogLevel:      "info",
		EnableCORS:    true,
		RateWindow:    time.Minute,
		Persistence: PersistenceConfig{
			Driver:        "memory",
			AWSRegion:     "us-west-2",
			DynamoDBTable: "mindgraph",
		},
		Events: EventsConfig{
			Driver:       "log",
			EventBusName: "mindgraph-events",
			Source:       "mindgraph",
		},
		Layout: LayoutConfig{
			Timeout:                 2 * time.Second,
			NodeSpacing:             domain.NodeSpacing,
			LayerSpacing:            domain.LayerSpacing,
			DefaultNodeWidth:        domain.DefaultNodeWidth,
			DefaultNodeHeight:       domain.DefaultNodeHeight,
			Sweeps:                  4,
			BreakerEnabled:          true,
			BreakerFailureThreshold: 0.6,
			BreakerMinRequests:      5,
			BreakerTimeout:          20 * time.Second,
			CacheEnabled:            true,
			CacheTTL:                5 * time.Minute,
			CacheMaxEntries:         256,
		},
		Tracing: TracingConfig{
			Endpoint:   "localhost:4317",
			SampleRate: 1,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: "mindgraph",
		},
		Editor: EditorConfig{
			AutoLayout:   true,
			HistoryLimit: domain.HistoryLimit,
		},
		Keybinds: map[string]string{},
	}
}

// LoadConfig builds the configuration from defaults, the YAML file named by
// path (or MINDGRAPH_CONFIG when path is empty) and environment variables,
// in that order, and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(ConfigPathEnv)
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads configuration from MINDGRAPH_CONFIG and the environment
func Load() (*Config, error) {
	return LoadConfig("")
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if c.Keybinds == nil {
		c.Keybinds = map[string]string{}
	}
	return nil
}

func (c *Config) applyEnv() {
	c.ServerAddress = getEnv("SERVER_ADDRESS", c.ServerAddress)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.LogLevel = strings.ToLower(getEnv("LOG_LEVEL", c.LogLevel))
	c.EnableCORS = getEnvBool("ENABLE_CORS", c.EnableCORS)
	c.RateLimit = getEnvInt("RATE_LIMIT", c.RateLimit)

	c.IsLambda = getEnvBool("IS_LAMBDA", c.IsLambda)
	c.LambdaFunctionName = getEnv("AWS_LAMBDA_FUNCTION_NAME", "")
	if c.LambdaFunctionName != "" {
		c.IsLambda = true
	}

	c.Persistence.Driver = getEnv("PERSISTENCE_DRIVER", c.Persistence.Driver)
	c.Persistence.AWSRegion = getEnv("AWS_REGION", c.Persistence.AWSRegion)
	c.Persistence.DynamoDBTable = getEnv("TABLE_NAME", getEnv("DYNAMODB_TABLE", c.Persistence.DynamoDBTable))

	c.Events.Driver = getEnv("EVENTS_DRIVER", c.Events.Driver)
	c.Events.EventBusName = getEnv("EVENT_BUS_NAME", c.Events.EventBusName)

	c.Layout.Timeout = getEnvDuration("LAYOUT_TIMEOUT", c.Layout.Timeout)
	c.Layout.BreakerEnabled = getEnvBool("LAYOUT_BREAKER_ENABLED", c.Layout.BreakerEnabled)
	c.Layout.CacheEnabled = getEnvBool("LAYOUT_CACHE_ENABLED", c.Layout.CacheEnabled)

	c.Tracing.Enabled = getEnvBool("ENABLE_TRACING", c.Tracing.Enabled)
	c.Tracing.Endpoint = getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", c.Tracing.Endpoint)
	c.Tracing.XRay = getEnvBool("ENABLE_XRAY", c.Tracing.XRay)

	c.Metrics.Enabled = getEnvBool("ENABLE_METRICS", c.Metrics.Enabled)
	c.Metrics.CloudWatch = getEnvBool("ENABLE_CLOUDWATCH_METRICS", c.Metrics.CloudWatch)

	c.Editor.AutoLayout = getEnvBool("AUTO_LAYOUT", c.Editor.AutoLayout)
	c.Editor.HistoryLimit = getEnvInt("HISTORY_LIMIT", c.Editor.HistoryLimit)
}

var validate = validator.New()

// Validate checks the configuration against its validation tags
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Domain returns the engine tunables derived from this configuration
func (c *Config) Domain() *domainconfig.DomainConfig {
	d := domainconfig.DefaultDomainConfig()
	d.HistoryLimit = c.Editor.HistoryLimit
	d.NodeSpacing = c.Layout.NodeSpacing
	d.LayerSpacing = c.Layout.LayerSpacing
	d.DefaultNodeWidth = c.Layout.DefaultNodeWidth
	d.DefaultNodeHeight = c.Layout.DefaultNodeHeight
	return d
}

// IsDevelopment checks if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction checks if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool gets a boolean environment variable with a default value
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value == "true" || value == "1" || value == "yes"
}

// getEnvInt gets an integer environment variable with a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
