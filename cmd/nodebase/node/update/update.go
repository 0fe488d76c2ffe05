package update

import (
	"os"
	"os/signal"

	"github.com/nodebase/nodebase/cmd/nodebase/pkg/settings"
	"github.com/nodebase/nodebase/cmd/nodebase/pkg/submit"
	"github.com/nodebase/nodebase/node-base/nodeops"
	"github.com/nodebase/nodebase/node-base/nodetx"
	"github.com/urfave/cli/v2"
)

func Update() *cli.Command {
	return &cli.Command{
		Name:  "update",
		Usage: "Change the node key of an active node",
		Flags: []cli.Flag{
			settings.NodeURLFlag(),
			settings.TokenFlag(),
			&cli.StringFlag{
				Name:     "node-key",
				Usage:    "New address of the node",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "owner",
				Usage: "Owner of the token instance, checked when the node is not delegated",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
			defer cancel()

			cfg, err := settings.Load(c)
			if err != nil {
				return err
			}

			params := nodeops.UpdateNodeParams{}
			if params.TokenInstanceKey, err = settings.Token(c); err != nil {
				return err
			}
			if params.Owner, err = settings.Address(c, "owner"); err != nil {
				return err
			}
			nodeKey, err := settings.Address(c, "node-key")
			if err != nil {
				return err
			}
			params.NodePublicKey = &nodeKey

			return submit.Submit(ctx, cfg, &nodetx.NodeTransaction{
				Update: []nodeops.UpdateNodeParams{params},
			})
		},
	}
}
