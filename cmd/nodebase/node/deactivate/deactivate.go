package deactivate

import (
	"os"
	"os/signal"

	"github.com/nodebase/nodebase/cmd/nodebase/pkg/settings"
	"github.com/nodebase/nodebase/cmd/nodebase/pkg/submit"
	"github.com/nodebase/nodebase/node-base/nodeops"
	"github.com/nodebase/nodebase/node-base/nodetx"
	"github.com/urfave/cli/v2"
)

func Deactivate() *cli.Command {
	return &cli.Command{
		Name:  "deactivate",
		Usage: "Clear the node of a token instance",
		Flags: []cli.Flag{
			settings.NodeURLFlag(),
			settings.TokenFlag(),
			&cli.StringFlag{
				Name:  "owner",
				Usage: "Owner of the token instance, defaults to the wallet",
			},
			&cli.BoolFlag{
				Name:  "unlock",
				Usage: "Also release the lock",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
			defer cancel()

			cfg, err := settings.Load(c)
			if err != nil {
				return err
			}

			params := nodeops.DeactivateNodeParams{}
			if params.TokenInstanceKey, err = settings.Token(c); err != nil {
				return err
			}
			if params.Owner, err = settings.Address(c, "owner"); err != nil {
				return err
			}

			tx := &nodetx.NodeTransaction{
				Deactivate: []nodeops.DeactivateNodeParams{params},
			}
			if c.Bool("unlock") {
				tx.Unlock = []nodeops.UnlockNodeParams{{TokenInstanceKey: params.TokenInstanceKey}}
			}

			return submit.Submit(ctx, cfg, tx)
		},
	}
}
