package sqlitenode

import (
	"context"
	"database/sql"
)

const countNetworks = `-- name: CountNetworks :one
SELECT COUNT(*) FROM processing_status
`

func (q *Queries) CountNetworks(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countNetworks)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const hasProcessingStatus = `-- name: HasProcessingStatus :one
SELECT EXISTS(SELECT 1 FROM processing_status WHERE network = ?)
`

func (q *Queries) HasProcessingStatus(ctx context.Context, network string) (bool, error) {
	row := q.db.QueryRowContext(ctx, hasProcessingStatus, network)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const getProcessingStatus = `-- name: GetProcessingStatus :one
SELECT last_processed_block_number, last_processed_block_hash
FROM processing_status
WHERE network = ?
`

type GetProcessingStatusRow struct {
	LastProcessedBlockNumber int64
	LastProcessedBlockHash   string
}

func (q *Queries) GetProcessingStatus(ctx context.Context, network string) (GetProcessingStatusRow, error) {
	row := q.db.QueryRowContext(ctx, getProcessingStatus, network)
	var i GetProcessingStatusRow
	err := row.Scan(&i.LastProcessedBlockNumber, &i.LastProcessedBlockHash)
	return i, err
}

const insertProcessingStatus = `-- name: InsertProcessingStatus :exec
INSERT INTO processing_status (network, last_processed_block_number, last_processed_block_hash)
VALUES (?, ?, ?)
`

type InsertProcessingStatusParams struct {
	Network                  string
	LastProcessedBlockNumber int64
	LastProcessedBlockHash   string
}

func (q *Queries) InsertProcessingStatus(ctx context.Context, arg InsertProcessingStatusParams) error {
	_, err := q.db.ExecContext(ctx, insertProcessingStatus, arg.Network, arg.LastProcessedBlockNumber, arg.LastProcessedBlockHash)
	return err
}

const updateProcessingStatus = `-- name: UpdateProcessingStatus :exec
UPDATE processing_status
SET last_processed_block_number = ?, last_processed_block_hash = ?
WHERE network = ?
`

type UpdateProcessingStatusParams struct {
	LastProcessedBlockNumber int64
	LastProcessedBlockHash   string
	Network                  string
}

func (q *Queries) UpdateProcessingStatus(ctx context.Context, arg UpdateProcessingStatusParams) error {
	_, err := q.db.ExecContext(ctx, updateProcessingStatus, arg.LastProcessedBlockNumber, arg.LastProcessedBlockHash, arg.Network)
	return err
}

const getNode = `-- name: GetNode :one
SELECT composite_key, token_instance_key, node_public_key, operator_address, operator_fee, active, locked, activated_at_block, last_modified_at_block
FROM nodes
WHERE composite_key = ?
`

func scanNode(row interface{ Scan(...any) error }) (Node, error) {
	var i Node
	err := row.Scan(
		&i.CompositeKey,
		&i.TokenInstanceKey,
		&i.NodePublicKey,
		&i.OperatorAddress,
		&i.OperatorFee,
		&i.Active,
		&i.Locked,
		&i.ActivatedAtBlock,
		&i.LastModifiedAtBlock,
	)
	return i, err
}

func (q *Queries) GetNode(ctx context.Context, compositeKey string) (Node, error) {
	return scanNode(q.db.QueryRowContext(ctx, getNode, compositeKey))
}

const upsertNode = `-- name: UpsertNode :exec
INSERT INTO nodes (composite_key, token_instance_key, node_public_key, operator_address, operator_fee, active, locked, activated_at_block, last_modified_at_block)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (composite_key) DO UPDATE SET
    node_public_key = excluded.node_public_key,
    operator_address = excluded.operator_address,
    operator_fee = excluded.operator_fee,
    active = excluded.active,
    locked = excluded.locked,
    activated_at_block = excluded.activated_at_block,
    last_modified_at_block = excluded.last_modified_at_block
`

type UpsertNodeParams struct {
	CompositeKey        string
	TokenInstanceKey    string
	NodePublicKey       sql.NullString
	OperatorAddress     sql.NullString
	OperatorFee         sql.NullInt64
	Active              bool
	Locked              bool
	ActivatedAtBlock    int64
	LastModifiedAtBlock int64
}

func (q *Queries) UpsertNode(ctx context.Context, arg UpsertNodeParams) error {
	_, err := q.db.ExecContext(ctx, upsertNode,
		arg.CompositeKey,
		arg.TokenInstanceKey,
		arg.NodePublicKey,
		arg.OperatorAddress,
		arg.OperatorFee,
		arg.Active,
		arg.Locked,
		arg.ActivatedAtBlock,
		arg.LastModifiedAtBlock,
	)
	return err
}

const getNodesOfOperator = `-- name: GetNodesOfOperator :many
SELECT composite_key, token_instance_key, node_public_key, operator_address, operator_fee, active, locked, activated_at_block, last_modified_at_block
FROM nodes
WHERE operator_address = ?
ORDER BY activated_at_block, composite_key
`

func (q *Queries) GetNodesOfOperator(ctx context.Context, operatorAddress string) ([]Node, error) {
	rows, err := q.db.QueryContext(ctx, getNodesOfOperator, operatorAddress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Node
	for rows.Next() {
		i, err := scanNode(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countActiveNodes = `-- name: CountActiveNodes :one
SELECT COUNT(*) FROM nodes WHERE active
`

func (q *Queries) CountActiveNodes(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countActiveNodes)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const insertNodeEvent = `-- name: InsertNodeEvent :exec
INSERT INTO node_events (block_number, transaction_index_in_block, log_index_in_block, event, composite_key, token_instance_key, actor, node_public_key, operator_address, operator_fee)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertNodeEventParams struct {
	BlockNumber             int64
	TransactionIndexInBlock int64
	LogIndexInBlock         int64
	Event                   string
	CompositeKey            string
	TokenInstanceKey        string
	Actor                   string
	NodePublicKey           sql.NullString
	OperatorAddress         sql.NullString
	OperatorFee             sql.NullInt64
}

func (q *Queries) InsertNodeEvent(ctx context.Context, arg InsertNodeEventParams) error {
	_, err := q.db.ExecContext(ctx, insertNodeEvent,
		arg.BlockNumber,
		arg.TransactionIndexInBlock,
		arg.LogIndexInBlock,
		arg.Event,
		arg.CompositeKey,
		arg.TokenInstanceKey,
		arg.Actor,
		arg.NodePublicKey,
		arg.OperatorAddress,
		arg.OperatorFee,
	)
	return err
}

const getNodeEvents = `-- name: GetNodeEvents :many
SELECT block_number, transaction_index_in_block, log_index_in_block, event, composite_key, token_instance_key, actor, node_public_key, operator_address, operator_fee
FROM node_events
WHERE composite_key = ?
ORDER BY block_number, log_index_in_block
`

func (q *Queries) GetNodeEvents(ctx context.Context, compositeKey string) ([]NodeEvent, error) {
	rows, err := q.db.QueryContext(ctx, getNodeEvents, compositeKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []NodeEvent
	for rows.Next() {
		var i NodeEvent
		if err := rows.Scan(
			&i.BlockNumber,
			&i.TransactionIndexInBlock,
			&i.LogIndexInBlock,
			&i.Event,
			&i.CompositeKey,
			&i.TokenInstanceKey,
			&i.Actor,
			&i.NodePublicKey,
			&i.OperatorAddress,
			&i.OperatorFee,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteNodeEventsUntilBlock = `-- name: DeleteNodeEventsUntilBlock :exec
DELETE FROM node_events WHERE block_number <= ?
`

func (q *Queries) DeleteNodeEventsUntilBlock(ctx context.Context, block int64) error {
	_, err := q.db.ExecContext(ctx, deleteNodeEventsUntilBlock, block)
	return err
}
