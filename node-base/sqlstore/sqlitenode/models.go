package sqlitenode

import (
	"database/sql"
)

type Node struct {
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

type NodeEvent struct {
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

type ProcessingStatus struct {
	Network                  string
	LastProcessedBlockNumber int64
	LastProcessedBlockHash   string
}
