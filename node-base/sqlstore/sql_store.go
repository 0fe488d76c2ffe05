// Package sqlstore indexes node base events in SQLite so that node state and
// history can be queried without reading ledger state.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	_ "github.com/mattn/go-sqlite3"
	"github.com/nodebase/nodebase/node-base/agreement"
	"github.com/nodebase/nodebase/node-base/sqlstore/sqlitenode"
	"github.com/nodebase/nodebase/node-base/storageutil/nodemeta"
	"github.com/nodebase/nodebase/node-base/tokenkey"
)

const nodesSchemaVersion = uint64(1)

var ErrNotFound = errors.New("node not indexed")

type BlockWal struct {
	BlockInfo BlockInfo
	Events    []Event
}

type BlockInfo struct {
	Number     uint64      `json:"number,string"`
	Hash       common.Hash `json:"hash"`
	ParentHash common.Hash `json:"parentHash"`
}

// Event is a decoded node base log.
type Event struct {
	Name             string                    `json:"event"`
	TokenInstanceKey tokenkey.TokenInstanceKey `json:"tokenInstanceKey"`
	Actor            common.Address            `json:"actor"`
	Metadata         nodemeta.NodeMetadata     `json:"metadata"`
	TransactionIndex uint64                    `json:"txIndex"`
	LogIndex         uint64                    `json:"logIndex"`
}

type Node struct {
	TokenInstanceKey    tokenkey.TokenInstanceKey `json:"tokenInstanceKey"`
	Metadata            nodemeta.NodeMetadata     `json:"metadata"`
	Active              bool                      `json:"active"`
	Locked              bool                      `json:"locked"`
	ActivatedAtBlock    uint64                    `json:"activatedAtBlock"`
	LastModifiedAtBlock uint64                    `json:"lastModifiedAtBlock"`
}

type HistoryEntry struct {
	BlockNumber      uint64                `json:"blockNumber"`
	TransactionIndex uint64                `json:"txIndex"`
	LogIndex         uint64                `json:"logIndex"`
	Event            string                `json:"event"`
	Actor            common.Address        `json:"actor"`
	Metadata         nodemeta.NodeMetadata `json:"metadata"`
}

// SQLStore encapsulates the SQLite index of node events
type SQLStore struct {
	db                  *sql.DB
	historicBlocksCount uint64
}

// NewStore opens dbFile, recreating the tables when their schema version is
// outdated. When historicBlocksCount is not zero, events older than that many
// blocks are pruned.
func NewStore(dbFile string, historicBlocksCount uint64) (*SQLStore, error) {
	dir := filepath.Dir(dbFile)
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?cache=shared&mode=rwc&_journal_mode=WAL&_foreign_keys=true", dbFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx := context.Background()

	nodesVersion, err := readSchemaVersion(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	if err := applySchema(ctx, db, nodesVersion); err != nil {
		db.Close()
		return nil, err
	}

	log.Info("nodebase: database ready", "nodesSchemaVersion", nodesSchemaVersion)
	return &SQLStore{
		db:                  db,
		historicBlocksCount: historicBlocksCount,
	}, nil
}

func readSchemaVersion(ctx context.Context, db *sql.DB) (uint64, error) {
	var tableName string
	err := db.QueryRowContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type='table' AND name='schema_versions';
	`).Scan(&tableName)

	switch err {
	case sql.ErrNoRows:
		log.Warn("nodebase: no schema version info found, table missing")
		return 0, nil
	case nil:
	default:
		return 0, fmt.Errorf("failed to check schema: %w", err)
	}

	version := uint64(0)
	err = db.QueryRowContext(ctx, `SELECT nodes FROM schema_versions WHERE id = 1;`).Scan(&version)
	switch err {
	case sql.ErrNoRows:
		log.Warn("nodebase: no schema version info found, table empty")
		return 0, nil
	case nil:
		log.Info("nodebase: schema versions read from database", "nodes", version)
		return version, nil
	default:
		return 0, fmt.Errorf("failed to check schema: %w", err)
	}
}

func applySchema(ctx context.Context, db *sql.DB, existingVersion uint64) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	if existingVersion != nodesSchemaVersion {
		log.Warn(
			"nodebase: nodes tables have an outdated schema, dropping tables",
			"existingVersion", existingVersion,
			"requiredVersion", nodesSchemaVersion,
		)
		for _, table := range []string{"nodes", "node_events", "processing_status"} {
			if _, err = tx.ExecContext(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %s;`, table)); err != nil {
				return fmt.Errorf("failed to drop %s table: %w", table, err)
			}
		}
	}

	log.Info("nodebase: applying database schema")
	if err = sqlitenode.ApplySchemaTx(ctx, tx); err != nil {
		return fmt.Errorf("failed to recreate schema: %w", err)
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO schema_versions (id, nodes) VALUES (1, ?);`,
		nodesSchemaVersion)
	if err != nil {
		return fmt.Errorf("failed to update schema versions: %w", err)
	}

	return tx.Commit()
}

// Close closes the database connection
func (e *SQLStore) Close() error {
	return e.db.Close()
}

// GetQueries returns a new sqlitenode.Queries instance for autocommit operations
func (e *SQLStore) GetQueries() *sqlitenode.Queries {
	return sqlitenode.New(e.db)
}

// LastProcessedBlock returns 0 and an empty hash before the first block of
// networkID is inserted.
func (e *SQLStore) LastProcessedBlock(ctx context.Context, networkID string) (uint64, common.Hash, error) {
	status, err := e.GetQueries().GetProcessingStatus(ctx, networkID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, common.Hash{}, nil
	}
	if err != nil {
		return 0, common.Hash{}, fmt.Errorf("failed to get processing status: %w", err)
	}
	return uint64(status.LastProcessedBlockNumber), common.HexToHash(status.LastProcessedBlockHash), nil
}

// InsertBlock applies the events of a single block. Blocks have to be
// inserted in order and on top of the last processed block.
func (e *SQLStore) InsertBlock(ctx context.Context, blockWal BlockWal, networkID string) (err error) {
	blockNumber := blockWal.BlockInfo.Number
	log.Debug("processing block", "block", blockNumber, "events", len(blockWal.Events))

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			err = errors.Join(err, tx.Rollback())
		}
	}()

	txDB := sqlitenode.New(tx)

	hasNetwork, err := txDB.HasProcessingStatus(ctx, networkID)
	if err != nil {
		return fmt.Errorf("failed to check if network exists: %w", err)
	}

	if !hasNetwork {
		networkCount, err := txDB.CountNetworks(ctx)
		if err != nil {
			return fmt.Errorf("failed to count existing networks: %w", err)
		}

		if networkCount > 0 {
			return fmt.Errorf("cannot add network %s: database already contains %d network(s), only one network is allowed", networkID, networkCount)
		}

		err = txDB.InsertProcessingStatus(ctx, sqlitenode.InsertProcessingStatusParams{
			Network:                  networkID,
			LastProcessedBlockNumber: int64(blockNumber) - 1,
			LastProcessedBlockHash:   blockWal.BlockInfo.ParentHash.Hex(),
		})
		if err != nil {
			return fmt.Errorf("failed to insert initial processing status: %w", err)
		}
	} else {
		status, err := txDB.GetProcessingStatus(ctx, networkID)
		if err != nil {
			return fmt.Errorf("failed to get processing status: %w", err)
		}

		if status.LastProcessedBlockHash != blockWal.BlockInfo.ParentHash.Hex() {
			return fmt.Errorf("parent block hash mismatch: expected %s, got %s", status.LastProcessedBlockHash, blockWal.BlockInfo.ParentHash.Hex())
		}

		if int64(blockNumber) != status.LastProcessedBlockNumber+1 {
			return fmt.Errorf("block number sequence error: expected %d, got %d", status.LastProcessedBlockNumber+1, blockNumber)
		}
	}

	for _, ev := range blockWal.Events {
		if err = applyEvent(ctx, txDB, blockNumber, ev); err != nil {
			return fmt.Errorf("failed to apply %s of %s: %w", ev.Name, ev.TokenInstanceKey, err)
		}
	}

	err = txDB.UpdateProcessingStatus(ctx, sqlitenode.UpdateProcessingStatusParams{
		Network:                  networkID,
		LastProcessedBlockNumber: int64(blockNumber),
		LastProcessedBlockHash:   blockWal.BlockInfo.Hash.Hex(),
	})
	if err != nil {
		return fmt.Errorf("failed to update processing status: %w", err)
	}

	if e.historicBlocksCount > 0 && blockNumber > e.historicBlocksCount {
		err = txDB.DeleteNodeEventsUntilBlock(ctx, int64(blockNumber-e.historicBlocksCount))
		if err != nil {
			return fmt.Errorf("failed to prune node events: %w", err)
		}
	}

	return tx.Commit()
}

func nullAddress(a *common.Address) sql.NullString {
	if a == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: a.Hex(), Valid: true}
}

func metadataColumns(md nodemeta.NodeMetadata) (nodeKey, operator sql.NullString, fee sql.NullInt64) {
	nodeKey = nullAddress(md.NodePublicKey)
	if md.OperatorAgreement != nil {
		operator = nullAddress(&md.OperatorAgreement.PublicKey)
		fee = sql.NullInt64{Int64: int64(md.OperatorAgreement.Fee), Valid: true}
	}
	return nodeKey, operator, fee
}

func applyEvent(ctx context.Context, q *sqlitenode.Queries, blockNumber uint64, ev Event) error {
	compositeKey := ev.TokenInstanceKey.CompositeKey().Hex()
	nodeKey, operator, fee := metadataColumns(ev.Metadata)

	err := q.InsertNodeEvent(ctx, sqlitenode.InsertNodeEventParams{
		BlockNumber:             int64(blockNumber),
		TransactionIndexInBlock: int64(ev.TransactionIndex),
		LogIndexInBlock:         int64(ev.LogIndex),
		Event:                   ev.Name,
		CompositeKey:            compositeKey,
		TokenInstanceKey:        ev.TokenInstanceKey.String(),
		Actor:                   ev.Actor.Hex(),
		NodePublicKey:           nodeKey,
		OperatorAddress:         operator,
		OperatorFee:             fee,
	})
	if err != nil {
		return fmt.Errorf("failed to insert node event: %w", err)
	}

	params := sqlitenode.UpsertNodeParams{
		CompositeKey:        compositeKey,
		TokenInstanceKey:    ev.TokenInstanceKey.String(),
		NodePublicKey:       nodeKey,
		OperatorAddress:     operator,
		OperatorFee:         fee,
		Active:              ev.Metadata.NodePublicKey != nil,
		ActivatedAtBlock:    int64(blockNumber),
		LastModifiedAtBlock: int64(blockNumber),
	}

	existing, err := q.GetNode(ctx, compositeKey)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		return fmt.Errorf("failed to get node: %w", err)
	default:
		params.ActivatedAtBlock = existing.ActivatedAtBlock
		params.Locked = existing.Locked
	}

	switch ev.Name {
	case "NodeActivated":
		params.ActivatedAtBlock = int64(blockNumber)
		params.Locked = true
	case "NodeUnlocked", "NodeLockExpired":
		params.Locked = false
	}

	return q.UpsertNode(ctx, params)
}

func nodeFromRow(row sqlitenode.Node) (*Node, error) {
	key, err := tokenkey.Parse(row.TokenInstanceKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token instance key %q: %w", row.TokenInstanceKey, err)
	}
	return &Node{
		TokenInstanceKey:    key,
		Metadata:            metadataFromColumns(row.NodePublicKey, row.OperatorAddress, row.OperatorFee),
		Active:              row.Active,
		Locked:              row.Locked,
		ActivatedAtBlock:    uint64(row.ActivatedAtBlock),
		LastModifiedAtBlock: uint64(row.LastModifiedAtBlock),
	}, nil
}

func metadataFromColumns(nodeKey, operator sql.NullString, fee sql.NullInt64) nodemeta.NodeMetadata {
	md := nodemeta.NodeMetadata{}
	if nodeKey.Valid {
		a := common.HexToAddress(nodeKey.String)
		md.NodePublicKey = &a
	}
	if operator.Valid {
		md.OperatorAgreement = &agreement.OperatorAgreement{
			PublicKey: common.HexToAddress(operator.String),
			Fee:       uint64(fee.Int64),
		}
	}
	return md
}

func (e *SQLStore) GetNode(ctx context.Context, key tokenkey.TokenInstanceKey) (*Node, error) {
	row, err := e.GetQueries().GetNode(ctx, key.CompositeKey().Hex())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get node: %w", err)
	}
	return nodeFromRow(row)
}

func (e *SQLStore) NodesOfOperator(ctx context.Context, operator common.Address) ([]Node, error) {
	rows, err := e.GetQueries().GetNodesOfOperator(ctx, operator.Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to get nodes of operator: %w", err)
	}
	nodes := make([]Node, 0, len(rows))
	for _, row := range rows {
		n, err := nodeFromRow(row)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, *n)
	}
	return nodes, nil
}

func (e *SQLStore) CountActiveNodes(ctx context.Context) (uint64, error) {
	count, err := e.GetQueries().CountActiveNodes(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count active nodes: %w", err)
	}
	return uint64(count), nil
}

// History returns the indexed events of key, oldest first.
func (e *SQLStore) History(ctx context.Context, key tokenkey.TokenInstanceKey) ([]HistoryEntry, error) {
	rows, err := e.GetQueries().GetNodeEvents(ctx, key.CompositeKey().Hex())
	if err != nil {
		return nil, fmt.Errorf("failed to get node events: %w", err)
	}
	entries := make([]HistoryEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, HistoryEntry{
			BlockNumber:      uint64(row.BlockNumber),
			TransactionIndex: uint64(row.TransactionIndexInBlock),
			LogIndex:         uint64(row.LogIndexInBlock),
			Event:            row.Event,
			Actor:            common.HexToAddress(row.Actor),
			Metadata:         metadataFromColumns(row.NodePublicKey, row.OperatorAddress, row.OperatorFee),
		})
	}
	return entries, nil
}
