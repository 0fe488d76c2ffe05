// Package settings resolves the configuration of a command from the
// --config file, environment and command line flags, in increasing order of
// precedence.
package settings

import (
	"github.com/nodebase/nodebase/node-base/config"
	"github.com/urfave/cli/v2"
)

// ConfigFlag is set on the app so every subcommand can read it.
var ConfigFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "Path of a TOML configuration file",
	EnvVars: []string{"NODEBASE_CONFIG"},
}

func NodeURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "node-url",
		Usage:   "The URL of the node to connect to",
		EnvVars: []string{"NODE_URL"},
	}
}

// Load reads the config file named by --config and applies the flags that
// were set on the command line or through the environment.
func Load(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String(ConfigFlag.Name))
	if err != nil {
		return nil, err
	}

	if c.IsSet("node-url") {
		cfg.NodeURL = c.String("node-url")
	}
	if c.IsSet("sqlite-path") {
		cfg.SQLitePath = c.String("sqlite-path")
	}
	if c.IsSet("rpc-listen") {
		cfg.RPCListen = c.String("rpc-listen")
	}
	if c.IsSet("cors-origins") {
		cfg.CORSOrigins = c.StringSlice("cors-origins")
	}
	if c.IsSet("historic-blocks") {
		cfg.HistoricBlocks = c.Uint64("historic-blocks")
	}
	if c.IsSet("poll-interval") {
		cfg.PollInterval = c.Duration("poll-interval")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
