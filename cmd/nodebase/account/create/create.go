package create

import (
	"fmt"

	"github.com/adrg/xdg"
	"github.com/nodebase/nodebase/cmd/nodebase/account/pkg/useraccount"
	"github.com/urfave/cli/v2"
)

func Create() *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a new wallet holding a fresh key",
		Action: func(c *cli.Context) error {
			walletPath, err := xdg.ConfigFile(useraccount.WalletPath)
			if err != nil {
				return fmt.Errorf("failed to create config file path: %w", err)
			}

			password, err := useraccount.ReadPassword(true)
			if err != nil {
				return fmt.Errorf("failed to create password: %w", err)
			}

			address, err := useraccount.Save(walletPath, password, nil)
			if err != nil {
				return err
			}

			fmt.Println("New wallet created", walletPath)
			fmt.Println("Address:", address.Hex())
			return nil
		},
	}
}
