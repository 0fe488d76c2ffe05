package usedslots

import (
	"fmt"
	"math/big"
	"os"
	"os/signal"

	"github.com/nodebase/nodebase/cmd/nodebase/pkg/settings"
	"github.com/nodebase/nodebase/node-base/storageaccounting"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/urfave/cli/v2"
)

func UsedSlots() *cli.Command {
	return &cli.Command{
		Name:  "used-slots",
		Usage: "Number of storage slots used by node base",
		Flags: []cli.Flag{
			settings.NodeURLFlag(),
			settings.BlockFlag(),
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
			defer stop()

			res, err := settings.ReadState(ctx, c, func(access storageutil.StateAccess) (*big.Int, error) {
				return storageaccounting.GetNumberOfUsedSlots(access).ToBig(), nil
			})
			if err != nil {
				return fmt.Errorf("failed to get used slots: %w", err)
			}

			fmt.Println(res.String())

			return nil
		},
	}
}
