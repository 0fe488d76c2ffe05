package settings

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/nodebase/nodebase/node-base/remotestate"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/urfave/cli/v2"
)

func BlockFlag() *cli.Uint64Flag {
	return &cli.Uint64Flag{
		Name:  "block",
		Usage: "The block number to read state at, 0 is the latest block",
	}
}

// ReadState runs fn against the node base storage of the node at
// cfg.NodeURL, at --block or the latest block.
func ReadState[T any](ctx context.Context, c *cli.Context, fn func(storageutil.StateAccess) (T, error)) (T, error) {
	var zero T

	cfg, err := Load(c)
	if err != nil {
		return zero, err
	}

	client, err := ethclient.DialContext(ctx, cfg.NodeURL)
	if err != nil {
		return zero, fmt.Errorf("failed to connect to node: %w", err)
	}
	defer client.Close()

	if block := c.Uint64("block"); block != 0 {
		state := remotestate.At(ctx, client, block)
		res, err := fn(state)
		if state.Err() != nil {
			return zero, state.Err()
		}
		return res, err
	}

	return remotestate.Read(ctx, client, fn)
}
