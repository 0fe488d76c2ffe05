package allnodes

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/nodebase/nodebase/cmd/nodebase/pkg/settings"
	"github.com/nodebase/nodebase/node-base/nodeops"
	"github.com/urfave/cli/v2"
)

func AllNodes() *cli.Command {
	return &cli.Command{
		Name:  "all-nodes",
		Usage: "List every token instance that was ever activated",
		Flags: []cli.Flag{
			settings.NodeURLFlag(),
			settings.BlockFlag(),
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
			defer stop()

			nodes, err := settings.ReadState(ctx, c, nodeops.AllNodes)
			if err != nil {
				return fmt.Errorf("failed to list nodes: %w", err)
			}

			for _, n := range nodes {
				state := color.YellowString("inactive")
				switch {
				case n.Metadata.OperatorAgreement != nil:
					state = fmt.Sprintf("%s operated by %s fee %d%%", n.Metadata.NodePublicKey.Hex(), n.Metadata.OperatorAgreement.PublicKey.Hex(), n.Metadata.OperatorAgreement.Fee)
				case n.Metadata.NodePublicKey != nil:
					state = n.Metadata.NodePublicKey.Hex()
				}
				fmt.Println(n.TokenInstanceKey.String(), state)
			}

			return nil
		},
	}
}
