package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Order    OrderConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

type DatabaseConfig struct {
	URL      string // Full database URL
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// OrderConfig holds order lifecycle settings.
type OrderConfig struct {
	// ServiceFeeBasisPoints is the flat service fee applied on the cart
	// subtotal, in basis points (1500 = 15%).
	ServiceFeeBasisPoints int
	// TransactionPrefix prefixes generated transaction identifiers.
	TransactionPrefix string
	// RestockOnRefund controls whether an administrative correction to
	// refunded restores the order's quantities to inventory. Off by
	// default: issued tickets are not assumed reusable.
	RestockOnRefund bool
	// CartExpirationMinutes bounds how long an untouched pending order is
	// kept before the cleanup sweep removes it.
	CartExpirationMinutes int
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		Database: parseDatabaseConfig(),
		Order: OrderConfig{
			ServiceFeeBasisPoints: getEnvAsInt("ORDER_SERVICE_FEE_BP", 1500),
			TransactionPrefix:     getEnv("ORDER_TRANSACTION_PREFIX", "TXN"),
			RestockOnRefund:       getEnvAsBool("ORDER_RESTOCK_ON_REFUND", false),
			CartExpirationMinutes: getEnvAsInt("ORDER_CART_EXPIRATION_MINUTES", 60),
		},
	}

	return config, nil
}

func parseDatabaseConfig() DatabaseConfig {
	// Check if DATABASE_URL is provided
	databaseURL := getEnv("DATABASE_URL", "")
	if databaseURL != "" {
		return parseDatabaseURL(databaseURL)
	}

	// Fall back to individual environment variables
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvAsInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		DBName:   getEnv("DB_NAME", "ticketline"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func parseDatabaseURL(databaseURL string) DatabaseConfig {
	config := DatabaseConfig{
		URL: databaseURL,
	}

	// Parse the URL
	u, err := url.Parse(databaseURL)
	if err != nil {
		// If parsing fails, return the URL as-is
		return config
	}

	config.Host = u.Hostname()
	if port, err := strconv.Atoi(u.Port()); err == nil {
		config.Port = port
	}
	if u.User != nil {
		config.User = u.User.Username()
		if password, ok := u.User.Password(); ok {
			config.Password = password
		}
	}
	config.DBName = strings.TrimPrefix(u.Path, "/")
	config.SSLMode = u.Query().Get("sslmode")
	if config.SSLMode == "" {
		config.SSLMode = "disable"
	}

	return config
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
