package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

const keyEnv = "ENV"
const envLocal = "local"

const (
	defaultBaseURL      = "http://localhost:8080"
	defaultPollInterval = 3 * time.Second
	defaultHistoryDB    = ".wheresthat/history.db"
	defaultLogLevel     = "info"
)

type Config struct {
	config *viper.Viper
}

func Load(env string) (*Config, error) {

	if len(env) == 0 {
		if env = os.Getenv(keyEnv); len(env) == 0 {
			env = envLocal
		}
	}

	configPath, err := getConfigPath(env)

	viperConfig := viper.New()
	if err == nil {
		viperConfig.SetConfigFile(configPath)
		if err := viperConfig.ReadInConfig(); err != nil {
			slog.Warn(fmt.Sprintf("error reading config file, %s", err))
		}
	}
	viperConfig.AutomaticEnv()

	cfg := &Config{
		config: viperConfig,
	}

	return cfg, nil
}

func (c *Config) GetBaseURL() string {
	baseURL := c.config.GetString("BASE_URL")
	if len(baseURL) == 0 {
		baseURL = c.config.GetString("server.base_url")
	}
	if len(baseURL) == 0 {
		baseURL = defaultBaseURL
	}

	return baseURL
}

// GetRequestTimeout returns zero when unset, which leaves the transport default in place.
func (c *Config) GetRequestTimeout() time.Duration {
	timeout := c.config.GetDuration("REQUEST_TIMEOUT")
	if timeout == 0 {
		timeout = c.config.GetDuration("server.request_timeout")
	}

	return max(timeout, 0)
}

func (c *Config) GetPollInterval() time.Duration {
	interval := c.config.GetDuration("POLL_INTERVAL")
	if interval <= 0 {
		interval = c.config.GetDuration("index.poll_interval")
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}

	return interval
}

func (c *Config) GetHistoryDBPath() string {
	historyDBPath := c.config.GetString("HISTORY_DB_PATH")
	if len(historyDBPath) == 0 {
		historyDBPath = c.config.GetString("database.history_db_path")
	}
	if len(historyDBPath) == 0 {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, defaultHistoryDB)
		}
		historyDBPath = defaultHistoryDB
	}

	return historyDBPath
}

func (c *Config) GetLogLevel() string {
	level := c.config.GetString("LOG_LEVEL")
	if len(level) == 0 {
		level = c.config.GetString("log.level")
	}
	if len(level) == 0 {
		level = defaultLogLevel
	}

	return level
}

func getProjectRoot() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %w", err)
	}

	for {
		configDir := filepath.Join(currentDir, "config")
		if info, err := os.Stat(configDir); err == nil && info.IsDir() {
			return currentDir, nil
		}

		parent := filepath.Dir(currentDir)

		if parent == currentDir {
			break
		}

		currentDir = parent
	}

	return "", fmt.Errorf("could not find project root (directory containing 'config' folder)")
}

func getConfigPath(env string) (string, error) {
	configFile := fmt.Sprintf("config.%s.yaml", env)

	projectRoot, err := getProjectRoot()
	if err != nil {
		slog.Warn("failed to find project root with config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("failed to find project root: %w", err)
	}
	configPath := filepath.Join(projectRoot, "config", configFile)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		slog.Warn("failed to find config file within config directory, will use environment variables instead", "err", err.Error())
		return "", fmt.Errorf("config file does not exist: %s", configPath)
	}

	return configPath, nil
}
