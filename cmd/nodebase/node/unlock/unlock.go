package unlock

import (
	"os"
	"os/signal"

	"github.com/nodebase/nodebase/cmd/nodebase/pkg/settings"
	"github.com/nodebase/nodebase/cmd/nodebase/pkg/submit"
	"github.com/nodebase/nodebase/node-base/nodeops"
	"github.com/nodebase/nodebase/node-base/nodetx"
	"github.com/urfave/cli/v2"
)

func Unlock() *cli.Command {
	return &cli.Command{
		Name:  "unlock",
		Usage: "Release the lock of a token instance, as its lock authority",
		Flags: []cli.Flag{
			settings.NodeURLFlag(),
			settings.TokenFlag(),
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
			defer cancel()

			cfg, err := settings.Load(c)
			if err != nil {
				return err
			}

			key, err := settings.Token(c)
			if err != nil {
				return err
			}

			return submit.Submit(ctx, cfg, &nodetx.NodeTransaction{
				Unlock: []nodeops.UnlockNodeParams{{TokenInstanceKey: key}},
			})
		},
	}
}
