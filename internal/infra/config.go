package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/xela07ax/relevance-backend/internal/domain"
)

// Config — корневая структура конфигурации бэкенда.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Relevance RelevanceConfig `mapstructure:"rai"`
	API       APIConfig       `mapstructure:"api"`
	Logger    LoggerConfig    `mapstructure:"logger"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// ServerConfig описывает настройки HTTP-сервера.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// Addr возвращает адрес для net.Listen.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// RelevanceConfig — креды и параметры клиента Relevance AI.
type RelevanceConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Region  string `mapstructure:"region"`
	Project string `mapstructure:"project"`
	BaseURL string `mapstructure:"base_url"` // Пусто — вычисляется из region

	// Timeout 0 означает "без таймаута": отмена приходит только из контекста запроса
	Timeout   time.Duration `mapstructure:"timeout"`
	RateLimit float64       `mapstructure:"rate_limit"` // req/s, 0 — без лимита
	RateBurst int           `mapstructure:"rate_burst"`
}

// APIConfig выбирает ревизию HTTP-схемы (v1, v2, v3).
type APIConfig struct {
	Revision string `mapstructure:"revision"`
}

// LoggerConfig настраивает поведение zap логгера.
type LoggerConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, console
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoadConfig собирает конфигурацию из дефолтов, .env файла, YAML и ENV.
// configFile — явный путь к YAML (пусто — ищем config.yaml в . и ./configs),
// envFile — путь к dotenv файлу (пусто — не читаем).
func LoadConfig(configFile, envFile string) (*Config, error) {
	v := viper.New()

	// 1. Настройка поиска файла
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	// 2. ENV: SERVER_PORT=9000 перекроет server.port, RAI_API_KEY — rai.api_key
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 3. Дефолты
	setDefaults(v)

	// 4. .env кладём поверх дефолтов: реальное окружение и YAML всё равно главнее
	if envFile != "" {
		if err := loadDotEnv(v, envFile); err != nil {
			return nil, err
		}
	}

	// 5. Чтение файла
	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Если файла нет — работаем на ENV и дефолтах
	}

	// 6. Маппинг в структуру
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate проверяет то, что можно проверить без похода в сеть.
// Креды Relevance проверяет конструктор клиента.
func (c *Config) Validate() error {
	if _, err := domain.ParseRevision(c.API.Revision); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: invalid server port %d", c.Server.Port)
	}
	if c.Relevance.RateLimit < 0 {
		return fmt.Errorf("config: rai.rate_limit must not be negative")
	}
	return nil
}

// Revision возвращает уже провалидированную ревизию API.
func (c *Config) Revision() domain.Revision {
	rev, _ := domain.ParseRevision(c.API.Revision)
	return rev
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.read_timeout", 5*time.Second)
	v.SetDefault("server.write_timeout", time.Duration(0)) // 0 — ответ не обрывается раньше вызова Relevance
	v.SetDefault("rai.api_key", "")
	v.SetDefault("rai.region", "")
	v.SetDefault("rai.project", "")
	v.SetDefault("rai.base_url", "")
	v.SetDefault("rai.timeout", time.Duration(0))
	v.SetDefault("rai.rate_limit", 0)
	v.SetDefault("rai.rate_burst", 1)
	v.SetDefault("api.revision", string(domain.RevisionV3))
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("metrics.enabled", true)
}

// loadDotEnv читает KEY=VALUE файл и подкладывает значения как дефолты.
// Отсутствующий файл — не ошибка.
func loadDotEnv(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	dv := viper.New()
	dv.SetConfigFile(path)
	dv.SetConfigType("env")
	if err := dv.ReadInConfig(); err != nil {
		return fmt.Errorf("error reading env file %s: %w", path, err)
	}

	// server.port <- SERVER_PORT; viper хранит ключи dotenv в нижнем регистре
	for _, key := range v.AllKeys() {
		if name := strings.ReplaceAll(key, ".", "_"); dv.IsSet(name) {
			v.SetDefault(key, dv.Get(name))
		}
	}
	return nil
}
