// Package config loads the TOML configuration shared by the nodebase
// commands.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/nodebase/nodebase/node-base/agreement"
	"github.com/nodebase/nodebase/node-base/nodetx"
)

type Config struct {
	// NodeURL is the JSON-RPC endpoint of the ledger node.
	NodeURL string
	// RPCListen is the address the nodebase API is served on.
	RPCListen string
	// CORSOrigins lists the browser origins allowed to call the API.
	CORSOrigins []string

	SQLitePath string
	// HistoricBlocks bounds how many blocks of node events are kept in the
	// index; 0 keeps everything.
	HistoricBlocks uint64
	PollInterval   time.Duration

	MaxFeePercent     uint64
	MaxCompressedSize int64
}

func Default() *Config {
	return &Config{
		NodeURL:           "http://localhost:8545",
		RPCListen:         "127.0.0.1:8646",
		SQLitePath:        "nodebase/nodes.db",
		HistoricBlocks:    0,
		PollInterval:      2 * time.Second,
		MaxFeePercent:     agreement.DefaultMaxFeePercent,
		MaxCompressedSize: nodetx.DefaultLimits.MaxCompressedSize,
	}
}

// Load reads path over the defaults. An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown keys in config %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.MaxFeePercent > agreement.DefaultMaxFeePercent {
		return fmt.Errorf("MaxFeePercent %d is above %d", c.MaxFeePercent, agreement.DefaultMaxFeePercent)
	}
	if c.MaxCompressedSize <= 0 {
		return fmt.Errorf("MaxCompressedSize must be positive")
	}
	if c.PollInterval <= 0 {
		return fmt.Errorf("PollInterval must be positive")
	}
	return nil
}

func (c *Config) Limits() nodetx.Limits {
	return nodetx.Limits{
		MaxFeePercent:     c.MaxFeePercent,
		MaxCompressedSize: c.MaxCompressedSize,
	}
}
