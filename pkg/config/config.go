package config

import (
	"fmt"

	"github.com/joeshaw/envdecode"

	"github.com/skillfeed/skillfeed/pkg/api"
	"github.com/skillfeed/skillfeed/pkg/api/auth"
	"github.com/skillfeed/skillfeed/pkg/lib"
	"github.com/skillfeed/skillfeed/pkg/lib/log"
	"github.com/skillfeed/skillfeed/pkg/storage/postgres"
)

type Config struct {
	DB   postgres.Config `env:""`
	API  api.Config      `env:""`
	Auth auth.Config     `env:""`
	Log  log.Config      `env:""`
}

func Load() (*Config, error) {
	var cfg Config

	if err := envdecode.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := lib.ValidateStruct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
