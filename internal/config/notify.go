package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type MailConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

type TelegramConfig struct {
	Enabled bool   `yaml:"enabled"`
	Token   string `yaml:"token"`
	ChatID  string `yaml:"chat_id"`
}

type NotifyConfig struct {
	Mail     MailConfig     `yaml:"mail"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// LoadNotify reads the optional notifier settings file. An empty path
// yields a zero config with everything disabled.
func LoadNotify(path string) (NotifyConfig, error) {
	var cfg NotifyConfig
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse notify config: %w", err)
	}
	if cfg.Mail.Enabled && (cfg.Mail.Host == "" || cfg.Mail.To == "") {
		return cfg, fmt.Errorf("mail notifier requires host and to")
	}
	if cfg.Telegram.Enabled && (cfg.Telegram.Token == "" || cfg.Telegram.ChatID == "") {
		return cfg, fmt.Errorf("telegram notifier requires token and chat_id")
	}
	return cfg, nil
}
