package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/Another0Noob/gutenberg-reader/internal/match"
	"github.com/Another0Noob/gutenberg-reader/internal/store"
	"gopkg.in/ini.v1"
)

type Config struct {
	Library   Library
	Gutenberg Gutenberg
	Server    Server
}

type Library struct {
	Path   string // snapshot file
	Limit  int    // max number of suggestions surfaced
	Strict bool   // subsequence prefilter before ranking
}

type Gutenberg struct {
	BaseURL           string
	Language          string
	RequestsPerSecond float64
	Workers           int
}

type Server struct {
	Addr string
}

func Default() Config {
	return Config{
		Library: Library{
			Path:  store.DefaultPath,
			Limit: match.DefaultLimit,
		},
		Gutenberg: Gutenberg{
			BaseURL:           "https://www.gutenberg.org",
			Language:          "English",
			RequestsPerSecond: 2,
			Workers:           4,
		},
		Server: Server{Addr: ":39039"},
	}
}

// Load reads an ini file over the defaults. An empty path or a missing file
// yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}

	f, err := ini.Load(path)
	if err != nil {
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}

	lib := f.Section("library")
	cfg.Library.Path = lib.Key("path").MustString(cfg.Library.Path)
	if cfg.Library.Limit, err = intKey(lib, "limit", cfg.Library.Limit); err != nil {
		return cfg, err
	}
	if cfg.Library.Limit < 1 {
		return cfg, fmt.Errorf("config library.limit: must be at least 1, got %d", cfg.Library.Limit)
	}
	if k := lib.Key("strict"); k.String() != "" {
		if cfg.Library.Strict, err = k.Bool(); err != nil {
			return cfg, fmt.Errorf("config library.strict: %w", err)
		}
	}

	gb := f.Section("gutenberg")
	cfg.Gutenberg.BaseURL = gb.Key("base_url").MustString(cfg.Gutenberg.BaseURL)
	cfg.Gutenberg.Language = gb.Key("language").MustString(cfg.Gutenberg.Language)
	if cfg.Gutenberg.Workers, err = intKey(gb, "workers", cfg.Gutenberg.Workers); err != nil {
		return cfg, err
	}
	if k := gb.Key("requests_per_second"); k.String() != "" {
		if cfg.Gutenberg.RequestsPerSecond, err = k.Float64(); err != nil {
			return cfg, fmt.Errorf("config gutenberg.requests_per_second: %w", err)
		}
	}

	cfg.Server.Addr = f.Section("server").Key("addr").MustString(cfg.Server.Addr)
	return cfg, nil
}

func intKey(sec *ini.Section, name string, def int) (int, error) {
	k := sec.Key(name)
	if k.String() == "" {
		return def, nil
	}
	v, err := k.Int()
	if err != nil {
		return def, fmt.Errorf("config %s.%s: %w", sec.Name(), name, err)
	}
	return v, nil
}
