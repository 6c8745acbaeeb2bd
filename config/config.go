package config

import (
	"github.com/gotify/configor"
)

var Conf *Configuration

type Configuration struct {
	App struct {
		ListenAddr string `default:"" env:"APP_HOST"`
		Port       int    `default:"8080"  env:"APP_PORT"`
	}
	Database struct {
		Host           string `default:"127.0.0.1" env:"DB_HOST"`
		Port           string `default:"5432" env:"DB_PORT"`
		Name           string `default:"leave-tools" env:"DB_NAME"`
		User           string `default:"postgres" env:"DB_USER"`
		Password       string `default:"postgres" env:"DB_PASSWORD"`
		MigrateOnStart *bool  `default:"true" env:"DB_MIGRATE_ON_START"`
		DebugMode      *bool  `default:"false" env:"DB_DEBUG_MODE"`
	}
	Auth struct {
		JWTSecret      string `default:"change-me-in-production" env:"AUTH_JWT_SECRET"`
		JWTExpireInSec int    `default:"86400" env:"AUTH_JWT_EXPIRE_IN_SEC"`
		//базовый секрет для токенов действий из писем, к нему подмешивается соль
		ActionTokenSecret   string `default:"change-me-in-production" env:"AUTH_ACTION_TOKEN_SECRET"`
		ActionTokenTTLHours int    `default:"48" env:"AUTH_ACTION_TOKEN_TTL_HOURS"`
	}
	Smtp struct {
		User                string `default:"" env:"SMTP_USER"`
		Password            string `default:"" env:"SMTP_PASSWORD"`
		Host                string `default:"" env:"SMTP_HOST"`
		Port                string `default:"" env:"SMTP_PORT"`
		TLSEnabled          *bool  `default:"true" env:"SMTP_TLS_ENABLED"`
		EmailFrom           string `default:"" env:"EMAIL_FROM"`
		DomainForActionLink string `default:"http://localhost:8080" env:"DOMAIN_FOR_ACTION_LINK"`
	}
}

func configFiles() []string {
	return []string{"config.yml"}
}

func InitConfig() {
	if Conf != nil {
		return
	}
	conf := new(Configuration)
	err := configor.New(&configor.Config{}).Load(conf, configFiles()...)
	if err != nil {
		panic(err)
	}
	Conf = conf
}
