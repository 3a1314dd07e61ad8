package config

import (
	"os"
	"strconv"
	"strings"

	"goanova/domain/core"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Data     DataConfig
	Analysis AnalysisConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	Enabled bool
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// DataConfig holds data source settings
type DataConfig struct {
	File  string
	Sheet string
}

// AnalysisConfig holds the analysis request settings
type AnalysisConfig struct {
	GroupColumn      string
	DependentColumns []string
	NFactors         int
	WithFactorial    bool
	WithManova       bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:    getEnvString("PORT", "8080"),
			Enabled: getEnvBool("SERVE", false),
		},
		Database: DatabaseConfig{
			URL: getEnvString("DATABASE_URL", ""),
		},
		Data: DataConfig{
			File:  getEnvString("DATA_FILE", ""),
			Sheet: getEnvString("DATA_SHEET", "Sheet1"),
		},
		Analysis: AnalysisConfig{
			GroupColumn:      getEnvString("GROUP_COLUMN", ""),
			DependentColumns: getEnvList("DEPENDENT_COLUMNS"),
			NFactors:         getEnvInt("N_FACTORS", 0),
			WithFactorial:    getEnvBool("WITH_FACTORIAL", false),
			WithManova:       getEnvBool("WITH_MANOVA", false),
		},
	}

	if cfg.Data.File != "" && cfg.Analysis.GroupColumn == "" {
		return nil, core.NewInvalidInputError("GROUP_COLUMN is required when DATA_FILE is set")
	}
	return cfg, nil
}

func getEnvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
