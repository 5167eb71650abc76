package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/wms-platform/location-directive-service/shared/pkg/kafka"
	"github.com/wms-platform/location-directive-service/shared/pkg/mongodb"
)

// Config holds application configuration
type Config struct {
	ServerAddr     string `validate:"required"`
	Environment    string `validate:"required"`
	LogLevel       string `validate:"omitempty,oneof=debug info warn error"`
	MongoDB        *mongodb.Config
	Kafka          *kafka.Config
	KafkaEnabled   bool
	TracingEnabled bool
	OTLPEndpoint   string `validate:"required_if=TracingEnabled true"`
	CatalogFile    string `validate:"omitempty,file"`
	PriorityOrder  string `validate:"omitempty,oneof=ascending descending"`
}

type mongoSettings struct {
	URI      string `validate:"required,startswith=mongodb"`
	Database string `validate:"required"`
}

// loadConfig reads the environment, picking up a .env file when one exists
func loadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	mongoCfg := mongodb.DefaultConfig()
	mongoCfg.URI = getEnv("MONGODB_URI", mongoCfg.URI)
	mongoCfg.Database = getEnv("MONGODB_DATABASE", mongoCfg.Database)

	kafkaCfg := kafka.DefaultConfig()
	kafkaCfg.Brokers = splitList(getEnv("KAFKA_BROKERS", strings.Join(kafkaCfg.Brokers, ",")))
	kafkaCfg.ClientID = serviceName
	kafkaCfg.WriteTimeout = 10 * time.Second

	cfg := &Config{
		ServerAddr:     getEnv("SERVER_ADDR", ":8020"),
		Environment:    getEnv("ENVIRONMENT", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		MongoDB:        mongoCfg,
		Kafka:          kafkaCfg,
		KafkaEnabled:   getEnv("KAFKA_ENABLED", "true") == "true",
		TracingEnabled: getEnv("TRACING_ENABLED", "true") == "true",
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		CatalogFile:    os.Getenv("DIRECTIVE_CATALOG_FILE"),
		PriorityOrder:  getEnv("DIRECTIVE_PRIORITY_ORDER", "ascending"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	v := validator.New()
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := v.Struct(mongoSettings{URI: c.MongoDB.URI, Database: c.MongoDB.Database}); err != nil {
		return fmt.Errorf("invalid mongodb configuration: %w", err)
	}
	if c.KafkaEnabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("invalid configuration: KAFKA_BROKERS is empty")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
