package history

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/nodebase/nodebase/cmd/nodebase/pkg/settings"
	"github.com/nodebase/nodebase/node-base/address"
	nodelogs "github.com/nodebase/nodebase/node-base/logs"
	"github.com/nodebase/nodebase/node-base/sqlstore"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

func History() *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Get the events of a token instance from the ledger logs",
		Flags: []cli.Flag{
			settings.NodeURLFlag(),
			settings.TokenFlag(),
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the decoded events as JSON",
			},
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

			client, err := ethclient.DialContext(ctx, cfg.NodeURL)
			if err != nil {
				return fmt.Errorf("failed to connect to node: %w", err)
			}
			defer client.Close()

			logs, err := client.FilterLogs(ctx, ethereum.FilterQuery{
				Addresses: []common.Address{address.NodeBaseProcessorAddress},
				Topics: [][]common.Hash{
					{
						nodelogs.NodeActivated,
						nodelogs.NodeUpdated,
						nodelogs.NodeDeactivated,
						nodelogs.NodeUnlocked,
						nodelogs.NodeLockExpired,
					},
					{
						key.CompositeKey(),
					},
				},
			})
			if err != nil {
				return fmt.Errorf("failed to filter logs: %w", err)
			}

			if c.Bool("json") {
				events, err := sqlstore.EventsFromLogs(logsPtrs(logs))
				if err != nil {
					return err
				}
				return settings.PrintJSON(events)
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Block", "Tx", "Event", "Actor", "Node", "Operator", "Fee"})
			for _, l := range logs {
				events, err := sqlstore.EventsFromLogs([]*types.Log{&l})
				if err != nil {
					return err
				}
				for _, ev := range events {
					node, operator, fee := "", "", ""
					if ev.Metadata.NodePublicKey != nil {
						node = ev.Metadata.NodePublicKey.Hex()
					}
					if oa := ev.Metadata.OperatorAgreement; oa != nil {
						operator = oa.PublicKey.Hex()
						fee = fmt.Sprintf("%d%%", oa.Fee)
					}
					table.Append([]string{
						strconv.FormatUint(l.BlockNumber, 10),
						l.TxHash.Hex(),
						ev.Name,
						ev.Actor.Hex(),
						node,
						operator,
						fee,
					})
				}
			}
			table.Render()

			return nil
		},
	}
}

func logsPtrs(logs []types.Log) []*types.Log {
	ptrs := make([]*types.Log, len(logs))
	for i := range logs {
		ptrs[i] = &logs[i]
	}
	return ptrs
}
