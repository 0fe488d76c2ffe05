package nodesofoperator

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/nodebase/nodebase/cmd/nodebase/pkg/settings"
	"github.com/nodebase/nodebase/node-base/nodeops"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/urfave/cli/v2"
)

func NodesOfOperator() *cli.Command {
	return &cli.Command{
		Name:  "nodes-of-operator",
		Usage: "List the nodes delegated to an operator",
		Flags: []cli.Flag{
			settings.NodeURLFlag(),
			settings.BlockFlag(),
			&cli.StringFlag{
				Name:     "operator",
				Usage:    "Address of the operator",
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
			defer stop()

			operator, err := settings.Address(c, "operator")
			if err != nil {
				return err
			}

			nodes, err := settings.ReadState(ctx, c, func(access storageutil.StateAccess) ([]nodeops.NodeInfo, error) {
				return nodeops.NodesOfOperator(access, operator)
			})
			if err != nil {
				return fmt.Errorf("failed to list nodes: %w", err)
			}

			return settings.PrintJSON(nodes)
		},
	}
}
