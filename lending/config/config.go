package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/library-lending/pkg/kafka"
	"github.com/Astemirdum/library-lending/pkg/logger"
	"github.com/Astemirdum/library-lending/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap/zapcore"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"LENDING_HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"LENDING_HTTP_PORT" default:"8080"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE" default:"10s"`
}

type Lending struct {
	LoanPeriodDays    int           `yaml:"loanPeriodDays" envconfig:"LOAN_PERIOD_DAYS" default:"14"`
	FineRate          int           `yaml:"fineRate" envconfig:"FINE_RATE" default:"5"`
	DueReminderDays   int           `yaml:"dueReminderDays" envconfig:"DUE_REMINDER_DAYS" default:"2"`
	LowStockThreshold int           `yaml:"lowStockThreshold" envconfig:"LOW_STOCK_THRESHOLD" default:"1"`
	ScanInterval      time.Duration `yaml:"scanInterval" envconfig:"SCAN_INTERVAL" default:"24h"`
	ScanEnabled       bool          `yaml:"scanEnabled" envconfig:"SCAN_ENABLED" default:"true"`
	// the admin account created on startup when there is no admin yet
	AdminName  string `yaml:"adminName" envconfig:"ADMIN_NAME" default:"Administrator"`
	AdminEmail string `yaml:"adminEmail" envconfig:"ADMIN_EMAIL"`
}

type Config struct {
	Server   HTTPServer   `yaml:"server"`
	Database postgres.DB  `yaml:"db"`
	Kafka    kafka.Config `yaml:"kafka"`
	Log      logger.Log   `yaml:"log"`
	Lending  Lending      `yaml:"lending"`
}

type Option func(cfg *Config)

// WithLogLevel overrides LOG_LEVEL.
func WithLogLevel(level zapcore.Level) Option {
	return func(cfg *Config) {
		cfg.Log.LogLevel = level
	}
}

func WithWriteTimeout(d time.Duration) Option {
	return func(cfg *Config) {
		cfg.Server.WriteTimeout = d
	}
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) Config {
	once.Do(func() {
		var config Config
		if err := envconfig.Process("", &config); err != nil {
			log.Fatal("NewConfig ", err)
		}
		for _, op := range ops {
			op(&config)
		}
		cfg = config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg Config) {
	cfg.Database.Password = "***"
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
