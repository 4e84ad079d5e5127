package config

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	TelegramBotToken string `mapstructure:"TELEGRAM_BOT_TOKEN"`
	DB_URL           string `mapstructure:"DB_URL"`
	HTTPAddr         string `mapstructure:"HTTP_ADDR"`

	// Empty AdminKey leaves the admin endpoints open (dev mode).
	AdminKey string `mapstructure:"ADMIN_KEY"`

	// Optional shared secret TradingView alerts must carry.
	WebhookSecret string `mapstructure:"WEBHOOK_SECRET"`

	BrokerBackend string `mapstructure:"BROKER_BACKEND"`

	ReminderIntervalMin int `mapstructure:"REMINDER_INTERVAL_MIN"`
	ReminderAfterMin    int `mapstructure:"REMINDER_AFTER_MIN"`
}

func LoadConfig(path string) (config Config, err error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return config, fmt.Errorf("failed to resolve config path: %w", err)
	}

	viper.AddConfigPath(filepath.Dir(absPath))
	viper.SetConfigName(filepath.Base(absPath))
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	viper.SetDefault("HTTP_ADDR", ":8080")
	viper.SetDefault("BROKER_BACKEND", "manual")
	viper.SetDefault("REMINDER_INTERVAL_MIN", 15)
	viper.SetDefault("REMINDER_AFTER_MIN", 30)

	if err := viper.ReadInConfig(); err != nil {
		return config, fmt.Errorf("failed to read config: %w", err)
	}

	if err := viper.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return config, nil
}
