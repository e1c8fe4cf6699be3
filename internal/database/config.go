package database

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds the postgres connection settings.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// NewConfig reads the connection settings from the environment, falling back
// to local-development defaults.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		// No .env file is fine; plain environment variables still apply.
		fmt.Println("Warning: .env file not found")
	}

	return &Config{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", "hearth"),
		Password: getEnv("DB_PASSWORD", "hearth"),
		DBName:   getEnv("DB_NAME", "hearth"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}, nil
}

// DSN returns the keyword/value connection string gorm's postgres driver expects.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode)
}

// URL returns the postgres:// connection URL golang-migrate expects.
func (c *Config) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
