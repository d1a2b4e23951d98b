package config

import (
	"github.com/spf13/viper"
)

// Config holds the application configuration
type Config struct {
	Server struct {
		Port    int
		OpsPort int
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // hours
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Billing struct {
		ReceiptHMACKey  string // key for HMAC-signed payment receipts
		StatementPGPKey string // optional armored public key for encrypted statements
	}
}

// NewConfig loads the configuration from the environment
func NewConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("OPS_PORT", 8081)

	// Database defaults
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "tutorhub_db")

	// JWT defaults
	v.SetDefault("JWT_SECRET_KEY", "your-secret-key-here")
	v.SetDefault("JWT_EXPIRES_IN", 24)

	// SMTP defaults
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "your-email@gmail.com")
	v.SetDefault("SMTP_PASSWORD", "your-app-password")
	v.SetDefault("SMTP_FROM", "your-email@gmail.com")

	// Billing defaults
	v.SetDefault("RECEIPT_HMAC_KEY", "your-receipt-hmac-key-here")
	v.SetDefault("STATEMENT_PGP_KEY", "")

	cfg := &Config{}
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	cfg.Server.OpsPort = v.GetInt("OPS_PORT")

	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetInt("DB_PORT")
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.DBName = v.GetString("DB_NAME")

	cfg.JWT.SecretKey = v.GetString("JWT_SECRET_KEY")
	cfg.JWT.ExpiresIn = v.GetInt("JWT_EXPIRES_IN")

	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	cfg.SMTP.Username = v.GetString("SMTP_USERNAME")
	cfg.SMTP.Password = v.GetString("SMTP_PASSWORD")
	cfg.SMTP.From = v.GetString("SMTP_FROM")

	cfg.Billing.ReceiptHMACKey = v.GetString("RECEIPT_HMAC_KEY")
	cfg.Billing.StatementPGPKey = v.GetString("STATEMENT_PGP_KEY")

	return cfg, nil
}
