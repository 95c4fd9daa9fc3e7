package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type Config struct {
	Logger     Logger     `envPrefix:"LOGGER_"`
	HTTP       HTTP       `envPrefix:"HTTP_"`
	Storage    Storage    `envPrefix:"STORAGE_"`
	Render     Render     `envPrefix:"RENDER_"`
	PublicLink PublicLink `envPrefix:"PUBLIC_LINK_"`
}

func Parse() (*Config, error) {
	conf, err := env.ParseAsWithOptions[Config](env.Options{
		Prefix: "LAUDO_",
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return &conf, nil
}

type Logger struct {
	Level int `env:"LEVEL,expand" envDefault:"0"`
}
