package infrastructures

import (
	"os"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	DATABASE_URL        string
	REDIS_ADDRESS       string
	REDIS_PASSWORD      string
	JWT_SECRET          string
	ADMIN_TOKEN         string
	RATE_LIMIT_TIMEZONE string
	PORT                string
}

var Config *AppConfig

func LoadConfig() *AppConfig {
	godotenv.Load()

	Config = &AppConfig{
		DATABASE_URL:        os.Getenv("DATABASE_URL"),
		REDIS_ADDRESS:       os.Getenv("REDIS_ADDRESS"),
		REDIS_PASSWORD:      os.Getenv("REDIS_PASSWORD"),
		JWT_SECRET:          os.Getenv("JWT_SECRET"),
		ADMIN_TOKEN:         os.Getenv("ADMIN_TOKEN"),
		RATE_LIMIT_TIMEZONE: os.Getenv("RATE_LIMIT_TIMEZONE"),
		PORT:                os.Getenv("PORT"),
	}

	return Config
}
