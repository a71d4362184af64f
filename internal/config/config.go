package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/ilyakaznacheev/cleanenv"
)

type Listen struct {
	BindIp string `yaml:"bind_ip" env-default:"0.0.0.0"`
	Port   string `yaml:"port" env-default:"8080"`
}

type DatabaseConfig struct {
	// Driver is "mysql" for a networked deployment or "sqlite" for an
	// embedded file store.
	Driver string `yaml:"driver" env-default:"sqlite"`
	DSN    string `yaml:"dsn" env-default:"campusconnect.db"`
}

type MongoConfig struct {
	Enabled  bool   `yaml:"enabled" env-default:"false"`
	Host     string `yaml:"host" env-default:"localhost"`
	Port     string `yaml:"port" env-default:"27017"`
	User     string `yaml:"user" env-default:""`
	Password string `yaml:"password" env-default:""`
	Database string `yaml:"database" env-default:"campusconnect"`
}

type AuthConfig struct {
	// Secret signs HS256 bearer tokens.
	Secret        string `yaml:"secret" env:"AUTH_SECRET" env-default:""`
	TokenTTLHours int    `yaml:"token_ttl_hours" env-default:"24"`
}

type TokenConfig struct {
	// QRWindowMinutes is how long an issued event QR token stays valid.
	QRWindowMinutes int `yaml:"qr_window_minutes" env-default:"10"`
}

type TelegramConfig struct {
	Enabled bool   `yaml:"enabled" env-default:"false"`
	ApiKey  string `yaml:"api_key" env:"TELEGRAM_API_KEY" env-default:""`
	ChatId  int64  `yaml:"chat_id" env-default:"0"`
}

type Config struct {
	Listen   Listen         `yaml:"listen"`
	Database DatabaseConfig `yaml:"database"`
	Mongo    MongoConfig    `yaml:"mongo"`
	Auth     AuthConfig     `yaml:"auth"`
	Tokens   TokenConfig    `yaml:"tokens"`
	Telegram TelegramConfig `yaml:"telegram"`
	Env      string         `yaml:"env" env-default:"local"`
}

var instance *Config
var once sync.Once

func MustLoad(path string) *Config {
	var err error
	once.Do(func() {
		instance = &Config{}
		if err = cleanenv.ReadConfig(path, instance); err != nil {
			desc, _ := cleanenv.GetDescription(instance, nil)
			err = fmt.Errorf("config: %s; %s", err, desc)
			instance = nil
			log.Fatal(err)
		}
	})
	return instance
}
