package balance

import (
	"fmt"
	"math/big"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/params"
	"github.com/nodebase/nodebase/cmd/nodebase/account/pkg/useraccount"
	"github.com/nodebase/nodebase/cmd/nodebase/pkg/settings"
	"github.com/urfave/cli/v2"
)

func AccountBalance() *cli.Command {
	return &cli.Command{
		Name:  "balance",
		Usage: "Get the balance of the wallet, which pays for node transactions",
		Flags: []cli.Flag{
			settings.NodeURLFlag(),
		},
		Action: func(c *cli.Context) error {
			cfg, err := settings.Load(c)
			if err != nil {
				return err
			}

			userAccount, err := useraccount.Load()
			if err != nil {
				return fmt.Errorf("failed to load user account: %w", err)
			}

			ctx, cancel := signal.NotifyContext(c.Context, os.Interrupt)
			defer cancel()

			client, err := ethclient.DialContext(ctx, cfg.NodeURL)
			if err != nil {
				return fmt.Errorf("failed to dial node: %w", err)
			}
			defer client.Close()

			balance, err := client.BalanceAt(ctx, userAccount.Address, nil)
			if err != nil {
				return fmt.Errorf("failed to get balance: %w", err)
			}

			fmt.Println("Address:", userAccount.Address.Hex())
			fmt.Println("Balance:", humanize.Commaf(EthToFloat(balance)), "ETH")

			return nil
		},
	}
}

func EthToFloat(n *big.Int) float64 {
	f := new(big.Rat).SetFrac(n, big.NewInt(params.Ether))
	res, _ := f.Float64()
	return res
}
