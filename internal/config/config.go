package config

import (
	"fmt"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"Server"`
	Database DatabaseConfig `mapstructure:"Database"`
	Storage  StorageConfig  `mapstructure:"Storage"`
	Admin    AdminConfig    `mapstructure:"Admin"`
}

type ServerConfig struct {
	Port    string `mapstructure:"Port"`
	BaseURL string `mapstructure:"BaseURL"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"Host"`
	Port     string `mapstructure:"Port"`
	User     string `mapstructure:"User"`
	Password string `mapstructure:"Password"`
	Name     string `mapstructure:"Name"`
	SSLMode  string `mapstructure:"SSLMode"`
}

// StorageConfig выбирает бэкенд хранилища при старте процесса.
// Внутри приложения выбор больше нигде не проверяется: политика и
// сервис отдачи файлов работают через общий интерфейс.
type StorageConfig struct {
	Backend  string `mapstructure:"Backend"`  // local или s3
	LocalDir string `mapstructure:"LocalDir"` // директория вне публичных путей
}

type AdminConfig struct {
	Name     string `mapstructure:"Name"`
	Email    string `mapstructure:"Email"`
	Password string `mapstructure:"Password"`
}

func NewConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	// Привязываем переменные окружения
	v.BindEnv("Database.Host", "DATABASE_HOST")
	v.BindEnv("Database.Port", "DATABASE_PORT")
	v.BindEnv("Database.User", "DATABASE_USER")
	v.BindEnv("Database.Password", "DATABASE_PASSWORD")
	v.BindEnv("Database.Name", "DATABASE_NAME")
	v.BindEnv("Database.SSLMode", "DATABASE_SSLMODE")
	v.BindEnv("Server.Port", "HTTP_PORT")
	v.BindEnv("Server.BaseURL", "BASE_URL")
	v.BindEnv("Storage.Backend", "STORAGE_BACKEND")
	v.BindEnv("Storage.LocalDir", "STORAGE_LOCAL_DIR")
	v.BindEnv("Admin.Name", "ADMIN_NAME")
	v.BindEnv("Admin.Email", "ADMIN_EMAIL")
	v.BindEnv("Admin.Password", "ADMIN_PASSWORD")

	// Читаем конфигурацию из файла
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("Warning: using only environment variables: %v\n", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Проверяем переменные окружения напрямую если конфигурация неполная
	if cfg.Database.Host == "" {
		cfg.Database.Host = v.GetString("DATABASE_HOST")
	}
	if cfg.Database.Port == "" {
		cfg.Database.Port = v.GetString("DATABASE_PORT")
	}
	if cfg.Database.User == "" {
		cfg.Database.User = v.GetString("DATABASE_USER")
	}
	if cfg.Database.Password == "" {
		cfg.Database.Password = v.GetString("DATABASE_PASSWORD")
	}
	if cfg.Database.Name == "" {
		cfg.Database.Name = v.GetString("DATABASE_NAME")
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = v.GetString("DATABASE_SSLMODE")
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = v.GetString("HTTP_PORT")
	}

	// Проверяем, что все необходимые поля заполнены
	if cfg.Database.Host == "" ||
		cfg.Database.Port == "" ||
		cfg.Database.User == "" ||
		cfg.Database.Password == "" ||
		cfg.Database.Name == "" {
		return nil, fmt.Errorf("database configuration is incomplete: host=%s, port=%s, user=%s, name=%s",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Name)
	}

	// Учетные данные администратора задаются извне и проверяются на старте
	if cfg.Admin.Email == "" || cfg.Admin.Password == "" {
		return nil, fmt.Errorf("admin configuration is incomplete: email and password are required")
	}

	// Установка значений по умолчанию
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = "2525"
	}
	if cfg.Server.BaseURL == "" {
		cfg.Server.BaseURL = fmt.Sprintf("http://localhost:%s", cfg.Server.Port)
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = "local"
	}
	if cfg.Storage.Backend == "local" && cfg.Storage.LocalDir == "" {
		cfg.Storage.LocalDir = "/var/lib/docvault/files"
	}
	if cfg.Admin.Name == "" {
		cfg.Admin.Name = "Administrator"
	}

	return &cfg, nil
}

func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host,
		c.Port,
		c.User,
		c.Password,
		c.Name,
		c.SSLMode,
	)
}
