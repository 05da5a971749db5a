package config

import (
	"log"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"

	"github.com/statflow/listrelay/internal/logger"
	"github.com/statflow/listrelay/internal/tracing"
)

type Config struct {
	AppConfig       *AppConfig
	Logger          *logger.Config
	Tracing         *tracing.JaegerConfig
	GA4Config       *GA4Config
	DedupConfig     *DedupConfig
	ForwarderConfig *ForwarderConfig
	ExtractorConfig *ExtractorConfig
}

func InitConfig() (*Config, error) {
	config := &Config{
		AppConfig:       &AppConfig{},
		Logger:          &logger.Config{},
		Tracing:         &tracing.JaegerConfig{},
		GA4Config:       &GA4Config{},
		DedupConfig:     &DedupConfig{},
		ForwarderConfig: &ForwarderConfig{},
		ExtractorConfig: &ExtractorConfig{},
	}

	err := godotenv.Load()
	if err != nil {
		log.Print("Unable to load .env file")
	}

	err = env.Parse(config)
	if err != nil {
		log.Fatalf("Error loading listrelay config: %v", err)
	}

	return config, nil
}
