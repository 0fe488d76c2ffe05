// Package submit sends node transactions to the node base processor.
package submit

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/nodebase/nodebase/cmd/nodebase/account/pkg/useraccount"
	"github.com/nodebase/nodebase/node-base/address"
	"github.com/nodebase/nodebase/node-base/config"
	"github.com/nodebase/nodebase/node-base/nodetx"
	"github.com/nodebase/nodebase/node-base/sqlstore"
)

// Submit validates, packs and sends tx, waits for the receipt and prints the
// node events it carries.
func Submit(ctx context.Context, cfg *config.Config, tx *nodetx.NodeTransaction) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("invalid node transaction: %w", err)
	}
	if err := tx.ValidateFees(cfg.MaxFeePercent); err != nil {
		return fmt.Errorf("invalid node transaction: %w", err)
	}

	userAccount, err := useraccount.Load()
	if err != nil {
		return fmt.Errorf("failed to load user account: %w", err)
	}

	txData, err := tx.Pack()
	if err != nil {
		return fmt.Errorf("failed to encode node tx: %w", err)
	}
	if int64(len(txData)) > cfg.MaxCompressedSize {
		return fmt.Errorf("node tx is %d bytes, above the limit of %d", len(txData), cfg.MaxCompressedSize)
	}

	client, err := ethclient.DialContext(ctx, cfg.NodeURL)
	if err != nil {
		return fmt.Errorf("failed to connect to node: %w", err)
	}
	defer client.Close()

	chainID, err := client.ChainID(ctx)
	if err != nil {
		return fmt.Errorf("failed to get chain ID: %w", err)
	}

	nonce, err := client.PendingNonceAt(ctx, userAccount.Address)
	if err != nil {
		return fmt.Errorf("failed to get nonce: %w", err)
	}

	signedTx, err := types.SignNewTx(
		userAccount.PrivateKey,
		types.LatestSignerForChainID(chainID),
		&types.DynamicFeeTx{
			ChainID:   chainID,
			Nonce:     nonce,
			Gas:       1_000_000,
			Data:      txData,
			To:        &address.NodeBaseProcessorAddress,
			GasTipCap: big.NewInt(1e9), // 1 Gwei
			GasFeeCap: big.NewInt(5e9), // 5 Gwei
		},
	)
	if err != nil {
		return fmt.Errorf("failed to sign transaction: %w", err)
	}

	if err := client.SendTransaction(ctx, signedTx); err != nil {
		return fmt.Errorf("failed to send tx: %w", err)
	}

	receipt, err := bind.WaitMinedHash(ctx, client, signedTx.Hash())
	if err != nil {
		return fmt.Errorf("failed to wait for tx: %w", err)
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return fmt.Errorf("tx %s failed", signedTx.Hash())
	}

	events, err := sqlstore.EventsFromLogs(receipt.Logs)
	if err != nil {
		return fmt.Errorf("failed to decode events: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	for _, ev := range events {
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}

	return nil
}
