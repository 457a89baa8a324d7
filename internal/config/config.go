package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	HTTPAddr            string
	DatabaseURL         string
	EventsPath          string
	AnomaliesPath       string
	KafkaBrokers        []string
	KafkaTopicEvents    string
	ConsumerGroupPrefix string
	SimulatorTick       time.Duration
	NarrateEndpoint     string
	NarrateAPIKey       string
	NarrateModel        string
	MinioEndpoint       string
	MinioAccessKey      string
	MinioSecretKey      string
	MinioBucket         string
	MinioUseSSL         bool
}

func Load() Config {
	brokersCSV := getEnv("KAFKA_BROKERS", "")
	brokerParts := strings.Split(brokersCSV, ",")
	brokers := make([]string, 0, len(brokerParts))
	for _, b := range brokerParts {
		v := strings.TrimSpace(b)
		if v != "" {
			brokers = append(brokers, v)
		}
	}

	tickSeconds := getEnvInt("SIMULATOR_TICK_SECONDS", 0)

	return Config{
		HTTPAddr:            getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		EventsPath:          getEnv("EVENTS_PATH", "data/border_surveillance_data.json"),
		AnomaliesPath:       getEnv("ANOMALIES_PATH", "data/detected_anomalies.json"),
		KafkaBrokers:        brokers,
		KafkaTopicEvents:    getEnv("KAFKA_TOPIC_EVENTS", "sensor.events"),
		ConsumerGroupPrefix: getEnv("CONSUMER_GROUP_PREFIX", "sentinel"),
		SimulatorTick:       time.Duration(tickSeconds) * time.Second,
		NarrateEndpoint:     getEnv("NARRATE_ENDPOINT", "https://api.narration.local/v1/generate"),
		NarrateAPIKey:       getEnv("NARRATE_API_KEY", ""),
		NarrateModel:        getEnv("NARRATE_MODEL", "sentinel-describe-1"),
		MinioEndpoint:       getEnv("MINIO_ENDPOINT", ""),
		MinioAccessKey:      getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey:      getEnv("MINIO_SECRET_KEY", ""),
		MinioBucket:         getEnv("MINIO_BUCKET", "evidence"),
		MinioUseSSL:         getEnvBool("MINIO_USE_SSL", false),
	}
}

func getEnv(key, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v
}

func getEnvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return parsed
}
