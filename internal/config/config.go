package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	APIURL      string
	DBPath      string
	RabbitMQURL string
	LogLevel    string
	PerPage     int
	Debounce    time.Duration
	StatusAddr  string
}

// chave do viper -> variável de ambiente
var envBindings = map[string]string{
	"api_url":      "DASHBOARD_API_URL",
	"db_path":      "DASHBOARD_DB_PATH",
	"rabbitmq_url": "RABBITMQ_URL",
	"log_level":    "LOG_LEVEL",
	"per_page":     "DASHBOARD_PER_PAGE",
	"debounce":     "DASHBOARD_DEBOUNCE",
	"status_addr":  "DASHBOARD_STATUS_ADDR",
}

// Load reads .env (if present), then the environment, then any flag in flags
// that was explicitly set. Flags are looked up by the viper key with "_"
// replaced by "-".
func Load(flags *pflag.FlagSet) (*Config, error) {
	godotenv.Load()

	v := viper.New()
	v.SetDefault("api_url", "http://localhost:3333/api")
	v.SetDefault("db_path", defaultDBPath())
	v.SetDefault("rabbitmq_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("per_page", 12)
	v.SetDefault("debounce", "500ms")
	v.SetDefault("status_addr", "")

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, err
		}
	}

	if flags != nil {
		for key := range envBindings {
			flagName := flagNameFor(key)
			if f := flags.Lookup(flagName); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	cfg := &Config{
		APIURL:      v.GetString("api_url"),
		DBPath:      v.GetString("db_path"),
		RabbitMQURL: v.GetString("rabbitmq_url"),
		LogLevel:    v.GetString("log_level"),
		PerPage:     v.GetInt("per_page"),
		Debounce:    v.GetDuration("debounce"),
		StatusAddr:  v.GetString("status_addr"),
	}
	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("DASHBOARD_API_URL é obrigatório")
	}
	if c.PerPage <= 0 {
		return fmt.Errorf("per_page deve ser positivo, recebido %d", c.PerPage)
	}
	if c.Debounce <= 0 {
		return fmt.Errorf("debounce deve ser positivo, recebido %s", c.Debounce)
	}
	return nil
}

func flagNameFor(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}
	return filepath.Join(dir, "ligue-campaigns", "dashboard.db")
}
