package main

import (
	"errors"
	"io/fs"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"golang.org/x/time/rate"

	"github.com/astei/anvilkit/chunk"
	"github.com/astei/anvilkit/nbt"
	"github.com/astei/anvilkit/region"
)

const defaultConfigPath = "anvilkit.toml"

type Config struct {
	// WorldDir is the region directory commands work on when --world is not given.
	WorldDir    string          `toml:"world-dir"`
	Compression nbt.Compression `toml:"compression"`
	// Format is the layout of chunks created by setblock.
	Format chunk.Format `toml:"format"`

	AutoLight    bool `toml:"auto-light"`
	AutoFluid    bool `toml:"auto-fluid"`
	AutoTileTick bool `toml:"auto-tile-tick"`

	ChunkLoadingLimiter Limiter `toml:"chunk-loading-limiter"`
	// Workers bounds how many region files are scanned at once.
	Workers int `toml:"workers"`
}

// Limiter caps how many chunks are read from disk: N every Every. A zero N disables it.
type Limiter struct {
	Every duration `toml:"every"`
	N     int      `toml:"n"`
}

func (l *Limiter) Limiter() *rate.Limiter {
	if l.N == 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(l.Every.Duration), l.N)
}

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) (err error) {
	d.Duration, err = time.ParseDuration(string(text))
	return
}

func defaultConfig() Config {
	return Config{
		WorldDir:    "region",
		Compression: nbt.ZLib,
		Format:      chunk.Sectioned,
		AutoLight:   true,
		Workers:     runtime.NumCPU(),
	}
}

// readConfig overlays the file at path on the defaults. A missing file is only an error when
// required is set.
func readConfig(path string, required bool) (Config, error) {
	c := defaultConfig()
	meta, err := toml.DecodeFile(path, &c)
	if errors.Is(err, fs.ErrNotExist) && !required {
		return defaultConfig(), nil
	}
	if err != nil {
		return Config{}, err
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		var err errUnknownConfig
		for _, key := range undecoded {
			err = append(err, key.String())
		}
		return Config{}, err
	}

	return c, nil
}

type errUnknownConfig []string

func (e errUnknownConfig) Error() string {
	return "unknown config keys: [" + strings.Join(e, ", ") + "]"
}

func (c *Config) autoFlags() chunk.AutoFlags {
	return chunk.AutoFlags{
		Light:    c.AutoLight,
		Fluid:    c.AutoFluid,
		TileTick: c.AutoTileTick,
	}
}

func (c *Config) storeOptions() []region.Option {
	opts := []region.Option{
		region.WithFormat(c.Format),
		region.WithCompression(c.Compression),
	}
	if limiter := c.ChunkLoadingLimiter.Limiter(); limiter != nil {
		opts = append(opts, region.WithLimiter(limiter))
	}
	return opts
}
