package integrity

import (
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/nodebase/nodebase/cmd/nodebase/pkg/settings"
	"github.com/nodebase/nodebase/node-base/nodeops"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/urfave/cli/v2"
)

func Integrity() *cli.Command {
	return &cli.Command{
		Name:  "integrity",
		Usage: "Check every node record against token ownership and the operator index",
		Flags: []cli.Flag{
			settings.NodeURLFlag(),
			settings.BlockFlag(),
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
			defer stop()

			problems, err := settings.ReadState(ctx, c, func(access storageutil.StateAccess) ([]nodeops.IntegrityProblem, error) {
				return nodeops.CheckIntegrity(access), nil
			})
			if err != nil {
				return err
			}

			for _, p := range problems {
				fmt.Println(p.CompositeKey.Hex(), color.RedString(p.Problem))
			}

			if len(problems) > 0 {
				return fmt.Errorf("found %d problems", len(problems))
			}

			fmt.Println(color.GreenString("ok"))
			return nil
		},
	}
}
