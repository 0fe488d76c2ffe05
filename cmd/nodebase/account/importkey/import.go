package importkey

import (
	"fmt"
	"strings"

	"github.com/adrg/xdg"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/nodebase/nodebase/cmd/nodebase/account/pkg/useraccount"
	"github.com/urfave/cli/v2"
)

func ImportAccount() *cli.Command {
	return &cli.Command{
		Name:  "import",
		Usage: "Store a hex private key in a new wallet",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "privatekey",
				Aliases:  []string{"key"},
				Usage:    "Private key in hex format",
				EnvVars:  []string{"NODEBASE_PRIVATE_KEY"},
				Required: true,
			},
		},
		Action: func(c *cli.Context) error {
			privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(c.String("privatekey"), "0x"))
			if err != nil {
				return fmt.Errorf("invalid private key: %w", err)
			}

			walletPath, err := xdg.ConfigFile(useraccount.WalletPath)
			if err != nil {
				return fmt.Errorf("failed to get config file path: %w", err)
			}

			password, err := useraccount.ReadPassword(true)
			if err != nil {
				return fmt.Errorf("failed to create password: %w", err)
			}

			address, err := useraccount.Save(walletPath, password, privateKey)
			if err != nil {
				return err
			}

			fmt.Println("Imported key into", walletPath)
			fmt.Println("Address:", address.Hex())
			return nil
		},
	}
}
