package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Environment string         `mapstructure:"environment"`
	Server      ServerConfig   `mapstructure:"server"`
	Database    DatabaseConfig `mapstructure:"database"`
	Redis       RedisConfig    `mapstructure:"redis"`
	Keycloak    KeycloakConfig `mapstructure:"keycloak"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	ReadTimeout    int      `mapstructure:"read_timeout"`
	WriteTimeout   int      `mapstructure:"write_timeout"`
	IdleTimeout    int      `mapstructure:"idle_timeout"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int    `mapstructure:"max_connections"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KeycloakConfig carries both sessions: the OAuth client against the
// application realm (token endpoint) and the administrative credential
// against the admin realm. Loaded once at startup, never re-read.
type KeycloakConfig struct {
	URL           string `mapstructure:"url"`
	Realm         string `mapstructure:"realm"`
	AdminRealm    string `mapstructure:"admin_realm"`
	AdminUser     string `mapstructure:"admin_user"`
	AdminPass     string `mapstructure:"admin_password"`
	ClientID      string `mapstructure:"client_id"`
	ClientSecret  string `mapstructure:"client_secret"`
	SkipTLSVerify bool   `mapstructure:"skip_tls_verify"`
	CACertPath    string `mapstructure:"ca_cert_path"`
}

func Load() (*Config, error) {
	return LoadWithConfigFile("")
}

func LoadWithConfigFile(configFile string) (*Config, error) {
	setDefaults()

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/sgu-auth/")

		if err := viper.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("error reading config file: %w", err)
			}
		}
	}

	viper.SetEnvPrefix("SGU")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("environment", "production")
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.read_timeout", 30)
	viper.SetDefault("server.write_timeout", 30)
	viper.SetDefault("server.idle_timeout", 120)
	viper.SetDefault("server.allowed_origins", []string{})

	viper.SetDefault("database.host", "")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "")
	viper.SetDefault("database.password", "")
	viper.SetDefault("database.dbname", "")
	viper.SetDefault("database.sslmode", "require")
	viper.SetDefault("database.max_connections", 25)
	viper.SetDefault("database.max_idle", 5)

	viper.SetDefault("redis.host", "")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("keycloak.url", "")
	viper.SetDefault("keycloak.realm", "sgu")
	viper.SetDefault("keycloak.admin_realm", "master")
	viper.SetDefault("keycloak.admin_user", "")
	viper.SetDefault("keycloak.admin_password", "")
	viper.SetDefault("keycloak.client_id", "")
	viper.SetDefault("keycloak.client_secret", "")
	viper.SetDefault("keycloak.skip_tls_verify", false)
	viper.SetDefault("keycloak.ca_cert_path", "")
}

func (c *Config) Validate() error {
	if c.Keycloak.URL == "" {
		return fmt.Errorf("keycloak.url is required")
	}
	if c.Keycloak.Realm == "" {
		return fmt.Errorf("keycloak.realm is required")
	}
	if c.Keycloak.ClientID == "" {
		return fmt.Errorf("keycloak.client_id is required")
	}
	return nil
}

func NewLogger(environment string) (*zap.Logger, error) {
	var config zap.Config

	if environment == "development" {
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
		if environment == "test" {
			config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
		} else {
			config.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
		}
	}

	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return logger, nil
}
