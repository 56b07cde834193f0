package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	Environment     string
	FirebaseProject string
	FirebaseApiKey  string
	StorageBucket   string
	RedisURL        string
	RedisPassword   string
	WeatherApiKey   string
	WeatherApiURL   string
	GeocodeApiKey   string
	GeocodeApiURL   string
	InactiveMinutes int64
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		Environment:     getEnv("ENVIRONMENT", "development"),
		FirebaseProject: getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseApiKey:  getEnv("FIREBASE_API_KEY", ""),
		StorageBucket:   getEnv("STORAGE_BUCKET", ""),
		RedisURL:        getEnv("REDIS_URL", "localhost:6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		WeatherApiKey:   getEnv("WEATHER_API_KEY", ""),
		WeatherApiURL:   getEnv("WEATHER_API_URL", "https://api.openweathermap.org/data/2.5/weather"),
		GeocodeApiKey:   getEnv("GEOCODE_API_KEY", ""),
		GeocodeApiURL:   getEnv("GEOCODE_API_URL", "https://nominatim.openstreetmap.org/reverse"),
		InactiveMinutes: getEnvAsInt64("INACTIVE_THRESHOLD_MINUTES", 5),
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.ParseInt(value, 10, 64)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}
