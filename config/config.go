package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/kelseyhightower/envconfig"

	"github.com/bookrent/rental-service/internal/server"
	"github.com/bookrent/rental-service/pkg/kafka"
	"github.com/bookrent/rental-service/pkg/logger"
	"github.com/bookrent/rental-service/pkg/postgres"
)

type Rental struct {
	// Timezone anchors the dashboard day window.
	Timezone   string `yaml:"timezone" envconfig:"RENTAL_TIMEZONE" default:"Asia/Bangkok"`
	FinePerDay int    `yaml:"finePerDay" envconfig:"RENTAL_FINE_PER_DAY" default:"10"`
}

type Config struct {
	Server   server.Config   `yaml:"server"`
	Database postgres.Config `yaml:"database"`
	Kafka    kafka.Config
	Rental   Rental     `yaml:"rental"`
	JWTKey   string     `envconfig:"AUTH_JWT_KEY" json:"-"`
	Log      logger.Log `yaml:"log"`
}

var (
	once sync.Once
	cfg  Config
)

// NewConfig reads config from environment.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		for _, op := range ops {
			op(&config)
		}
		err := envconfig.Process("", &config)
		if err != nil {
			log.Fatal("NewConfig ", err)
		}
		cfg = config
		printConfig(cfg)
	})

	return &cfg
}

func printConfig(cfg Config) {
	jscfg, _ := json.MarshalIndent(cfg, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
