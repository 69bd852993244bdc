package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type AppConfig struct {
	API      *APIConfig      `mapstructure:"api"`
	Gin      *GinConfig      `mapstructure:"gin"`
	Postgres *PostgresConfig `mapstructure:"postgres"`
	Engine   *EngineConfig   `mapstructure:"engine"`
}

type APIConfig struct {
	Environment        string `mapstructure:"environment"`
	BaseURL            string `mapstructure:"base_url"`
	Port               string `mapstructure:"port"`
	JWTSigningKey      string `mapstructure:"jwt_signing_key"`
	AllowedCORSDomains string `mapstructure:"allowed_cors_domains"`
}

type GinConfig struct {
	Mode string `mapstructure:"mode"`
}

type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DB       string `mapstructure:"db"`
}

// EngineConfig tunes the ledger engine itself.
type EngineConfig struct {
	// DeliveryTokenTTLHours is the validity window of a delivery token.
	DeliveryTokenTTLHours int `mapstructure:"delivery_token_ttl_hours"`
	// SurpriseBoxCost is the point price of one surprise-box redemption.
	SurpriseBoxCost int `mapstructure:"surprise_box_cost"`
}

func Load(configPath string) (*AppConfig, error) {
	viper.SetConfigFile(configPath)

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("viper.ReadInConfig -> %w", err)
	}

	config := &AppConfig{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("viper.Unmarshal -> %w", err)
	}

	if config.Engine == nil {
		config.Engine = &EngineConfig{}
	}
	if config.Engine.DeliveryTokenTTLHours <= 0 {
		config.Engine.DeliveryTokenTTLHours = 24
	}
	if config.Engine.SurpriseBoxCost <= 0 {
		config.Engine.SurpriseBoxCost = 100
	}

	return config, nil
}
