package index

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/gofrs/flock"
	"github.com/nodebase/nodebase/cmd/nodebase/pkg/settings"
	"github.com/nodebase/nodebase/node-base/api"
	"github.com/nodebase/nodebase/node-base/sqlstore"
	"github.com/rs/cors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func Index() *cli.Command {
	return &cli.Command{
		Name:  "index",
		Usage: "Index node events into SQLite and serve the nodebase JSON-RPC API",
		Flags: []cli.Flag{
			settings.NodeURLFlag(),
			&cli.StringFlag{
				Name:    "sqlite-path",
				Usage:   "Index database, relative paths are under the XDG data home",
				EnvVars: []string{"NODEBASE_SQLITE_PATH"},
			},
			&cli.StringFlag{
				Name:    "rpc-listen",
				Usage:   "Address to serve the nodebase API on",
				EnvVars: []string{"NODEBASE_RPC_LISTEN"},
			},
			&cli.StringSliceFlag{
				Name:    "cors-origins",
				Usage:   "Origins allowed to call the API from a browser",
				EnvVars: []string{"NODEBASE_CORS_ORIGINS"},
			},
			&cli.Uint64Flag{
				Name:  "historic-blocks",
				Usage: "Number of blocks of node events to keep, 0 keeps all",
			},
			&cli.DurationFlag{
				Name:  "poll-interval",
				Usage: "How often to poll for new blocks",
			},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
			defer stop()

			cfg, err := settings.Load(c)
			if err != nil {
				return err
			}

			dbPath := cfg.SQLitePath
			if !filepath.IsAbs(dbPath) {
				dbPath, err = xdg.DataFile(dbPath)
				if err != nil {
					return fmt.Errorf("failed to create data file path: %w", err)
				}
			}

			fl := flock.New(dbPath + ".lock")
			locked, err := fl.TryLock()
			if err != nil {
				return fmt.Errorf("failed to lock index: %w", err)
			}
			if !locked {
				return fmt.Errorf("index %s is in use by another process", dbPath)
			}
			defer fl.Unlock()

			store, err := sqlstore.NewStore(dbPath, cfg.HistoricBlocks)
			if err != nil {
				return fmt.Errorf("failed to open index: %w", err)
			}
			defer store.Close()

			client, err := ethclient.DialContext(ctx, cfg.NodeURL)
			if err != nil {
				return fmt.Errorf("failed to connect to node: %w", err)
			}
			defer client.Close()

			srv := rpc.NewServer()
			defer srv.Stop()
			for _, a := range api.APIs(client, store) {
				if err := srv.RegisterName(a.Namespace, a.Service); err != nil {
					return fmt.Errorf("failed to register %s api: %w", a.Namespace, err)
				}
			}

			listener, err := net.Listen("tcp", cfg.RPCListen)
			if err != nil {
				return fmt.Errorf("failed to listen on %s: %w", cfg.RPCListen, err)
			}

			var handler http.Handler = srv
			if len(cfg.CORSOrigins) > 0 {
				handler = cors.New(cors.Options{
					AllowedOrigins: cfg.CORSOrigins,
					AllowedMethods: []string{http.MethodPost, http.MethodGet},
					AllowedHeaders: []string{"*"},
				}).Handler(handler)
			}

			httpServer := &http.Server{
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			log.Info("serving nodebase api", "addr", listener.Addr(), "db", dbPath, "node", cfg.NodeURL)

			g, gctx := errgroup.WithContext(ctx)

			g.Go(func() error {
				err := store.Follow(gctx, client, cfg.PollInterval)
				if err != nil && gctx.Err() != nil {
					// interrupted while talking to the node
					return nil
				}
				return err
			})

			g.Go(func() error {
				err := httpServer.Serve(listener)
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			})

			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				return httpServer.Shutdown(shutdownCtx)
			})

			return g.Wait()
		},
	}
}
