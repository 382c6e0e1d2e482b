package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Queue     QueueConfig     `mapstructure:"queue"`
	Redis     RedisConfig     `mapstructure:"redis"`
	JobSearch JobSearchConfig `mapstructure:"jobsearch"`
	Currency  CurrencyConfig  `mapstructure:"currency"`
	Analysis  AnalysisConfig  `mapstructure:"analysis"`
	Worker    WorkerConfig    `mapstructure:"worker"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"` // sqlite, postgres
	Path            string        `mapstructure:"path"`   // sqlite only
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// DSN builds the connection string for the configured driver.
func (c *DatabaseConfig) DSN() string {
	if c.Driver == "postgres" {
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	}
	return c.Path
}

type QueueConfig struct {
	Driver            string        `mapstructure:"driver"` // sqs, memory
	URL               string        `mapstructure:"url"`
	Region            string        `mapstructure:"region"`
	AccessKey         string        `mapstructure:"access_key"`
	SecretKey         string        `mapstructure:"secret_key"`
	WaitTime          time.Duration `mapstructure:"wait_time"`
	VisibilityTimeout time.Duration `mapstructure:"visibility_timeout"`
	SendTimeout       time.Duration `mapstructure:"send_timeout"`
}

type RedisConfig struct {
	URL     string `mapstructure:"url"`
	Enabled bool   `mapstructure:"enabled"`
}

type JobSearchConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	PageSize int           `mapstructure:"page_size"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type CurrencyConfig struct {
	BaseURL  string        `mapstructure:"base_url"`
	APIKey   string        `mapstructure:"api_key"`
	Target   string        `mapstructure:"target"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

type AnalysisConfig struct {
	Window int `mapstructure:"window"`
}

type WorkerConfig struct {
	Concurrency  int           `mapstructure:"concurrency"`
	Script       string        `mapstructure:"script"`
	Interpreter  string        `mapstructure:"interpreter"`
	RequeueCron  string        `mapstructure:"requeue_cron"`
	RequeueAfter time.Duration `mapstructure:"requeue_after"`
}

func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	// Enable environment variable override
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/skiller.db")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.max_open_conns", 20)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("queue.driver", "memory")
	v.SetDefault("queue.region", "us-east-1")
	v.SetDefault("queue.wait_time", 5*time.Second)
	v.SetDefault("queue.visibility_timeout", 2*time.Minute)
	v.SetDefault("queue.send_timeout", 10*time.Second)
	v.SetDefault("jobsearch.base_url", "https://www.reed.co.uk/api/1.0")
	v.SetDefault("jobsearch.page_size", 50)
	v.SetDefault("jobsearch.timeout", 30*time.Second)
	v.SetDefault("currency.base_url", "https://api.freecurrencyapi.com/v1")
	v.SetDefault("currency.target", "USD")
	v.SetDefault("currency.cache_ttl", 24*time.Hour)
	v.SetDefault("currency.timeout", 15*time.Second)
	v.SetDefault("analysis.window", 10)
	v.SetDefault("worker.concurrency", 2)
	v.SetDefault("worker.script", "./scripts/extract.py")
	v.SetDefault("worker.interpreter", "python3")
	v.SetDefault("worker.requeue_cron", "@every 10m")
	v.SetDefault("worker.requeue_after", 30*time.Minute)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Bind environment variables explicitly for sensitive data
	v.BindEnv("database.password", "DATABASE_PASSWORD")
	v.BindEnv("queue.url", "QUEUE_URL")
	v.BindEnv("queue.access_key", "AWS_ACCESS_KEY_ID")
	v.BindEnv("queue.secret_key", "AWS_SECRET_ACCESS_KEY")
	v.BindEnv("queue.region", "AWS_REGION")
	v.BindEnv("redis.url", "REDIS_URL")
	v.BindEnv("jobsearch.api_key", "JOBSEARCH_API_KEY")
	v.BindEnv("currency.api_key", "FREECURRENCY_API_KEY")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
