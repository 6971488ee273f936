package config

import (
	"fmt"
	"os"

	"plantmatch/internal/form"
	"plantmatch/internal/model"
)

// Config holds the server's environment configuration
type Config struct {
	Port           string
	MongoURI       string
	MongoDatabase  string
	RedisURI       string
	QuizConfigPath string
}

// Load reads configuration from the environment, applying the defaults
// used by the local docker-compose setup.
func Load() *Config {
	return &Config{
		Port:           getEnv("PORT", "8080"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGO_DB", "plantmatch"),
		RedisURI:       getEnv("REDIS_URI", "localhost:6379"),
		QuizConfigPath: getEnv("QUIZ_CONFIG", "configs/quiz.json"),
	}
}

// LoadQuizConfig reads and validates the quiz configuration document.
// Any validation failure is fatal to startup; the server must not run
// on a partial configuration.
func LoadQuizConfig(path string) (*model.QuizConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read quiz config %s: %w", path, err)
	}
	cfg, err := form.ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("invalid quiz config %s: %w", path, err)
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
