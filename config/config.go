package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/induction/core/metrics"
	"github.com/kilianp07/induction/core/planner"
	"github.com/kilianp07/induction/core/scheduler"
	"github.com/kilianp07/induction/infra/mqtt"
)

type Config struct {
	Store     StoreConfig      `json:"store"`
	Oracle    OracleConfig     `json:"oracle"`
	Planner   planner.Config   `json:"planner"`
	Scheduler scheduler.Config `json:"scheduler"`
	History   HistoryConfig    `json:"history"`
	Metrics   metrics.Config   `json:"metrics"`
	API       APIConfig        `json:"api"`
	MQTT      mqtt.Config      `json:"mqtt"`
	Sentry    SentryConfig     `json:"sentry"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("INDUCT_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "induct_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Store.SetDefaults()
	cfg.Oracle.SetDefaults()
	cfg.Planner.SetDefaults()
	cfg.Scheduler.SetDefaults()
	cfg.History.SetDefaults()
	cfg.Metrics.SetDefaults()
	cfg.API.SetDefaults()
	if err := cfg.Store.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Oracle.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Planner.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.Scheduler.Validate(); err != nil {
		return nil, err
	}
	if err := cfg.History.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
