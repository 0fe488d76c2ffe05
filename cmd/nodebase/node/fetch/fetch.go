package fetch

import (
	"os"
	"os/signal"

	"github.com/nodebase/nodebase/cmd/nodebase/pkg/settings"
	"github.com/nodebase/nodebase/node-base/nodeops"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta"
	"github.com/nodebase/nodebase/node-base/tokenlock"
	"github.com/urfave/cli/v2"
)

type fetched struct {
	Metadata *nodemeta.NodeMetadata  `json:"metadata"`
	Balance  *tokenlock.TokenBalance `json:"balance"`
}

func Fetch() *cli.Command {
	return &cli.Command{
		Name:  "fetch",
		Usage: "Print the node metadata and lock of a token instance",
		Flags: []cli.Flag{
			settings.NodeURLFlag(),
			settings.TokenFlag(),
			settings.BlockFlag(),
		},
		Action: func(c *cli.Context) error {
			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
			defer cancel()

			key, err := settings.Token(c)
			if err != nil {
				return err
			}

			res, err := settings.ReadState(ctx, c, func(access storageutil.StateAccess) (*fetched, error) {
				md, err := nodeops.FetchNodeMetadata(access, key)
				if err != nil {
					return nil, err
				}
				balance, err := tokenlock.Balance(access, key)
				if err != nil {
					return nil, err
				}
				return &fetched{Metadata: md, Balance: balance}, nil
			})
			if err != nil {
				return err
			}

			return settings.PrintJSON(res)
		},
	}
}
