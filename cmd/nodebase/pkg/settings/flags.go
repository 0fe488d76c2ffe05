package settings

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/nodebase/nodebase/node-base/tokenkey"
	"github.com/urfave/cli/v2"
)

func TokenFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "token",
		Usage:    "Token instance as collection|category|type|additionalKey|instance",
		Required: true,
		EnvVars:  []string{"NODE_TOKEN"},
	}
}

func Token(c *cli.Context) (tokenkey.TokenInstanceKey, error) {
	return tokenkey.Parse(c.String("token"))
}

// Address parses the hex address in flag name. An unset flag yields the zero
// address.
func Address(c *cli.Context, name string) (common.Address, error) {
	if !c.IsSet(name) {
		return common.Address{}, nil
	}
	v := c.String(name)
	if !common.IsHexAddress(v) {
		return common.Address{}, fmt.Errorf("--%s: invalid address %q", name, v)
	}
	return common.HexToAddress(v), nil
}
