package address

import "github.com/ethereum/go-ethereum/common"

var (
	// NodeBaseProcessorAddress receives node transactions and owns every
	// storage slot written by the node base processor.
	NodeBaseProcessorAddress = common.HexToAddress("0x000000000000000000000000000000006e6f6465")
)
