// Package tokenlock is the ledger's record of who holds each node token
// instance and whether a unit of it is locked.
//
// Each instance has a single owner and at most one lock hold. A hold is
// released by its lock authority, or by housekeeping once the block named in
// Expires is reached.
package tokenlock

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/nodebase/nodebase/node-base/storageutil"
	"github.com/nodebase/nodebase/node-base/storageutil/stateblob"
	"github.com/nodebase/nodebase/node-base/tokenkey"
	"github.com/nodebase/nodebase/node-base/tokenlock/lockexpiration"
)

type StateAccess = storageutil.StateAccess

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrTokenLocked         = errors.New("token instance is already locked")
	ErrNotLockAuthority    = errors.New("caller is not the lock authority")
	ErrNotLocked           = errors.New("token instance is not locked")
	ErrAlreadyMinted       = errors.New("token instance already has an owner")
	ErrInvalidQuantity     = errors.New("only a quantity of 1 can be locked")
	ErrInvalidExpiry       = errors.New("lock expires at or before the current block")
)

var (
	OwnerSalt = []byte("nodeBaseTokenOwner")
	HoldSalt  = []byte("nodeBaseTokenHold")
)

type LockedHold struct {
	LockAuthority  common.Address `json:"lockAuthority"`
	Quantity       uint64         `json:"quantity"`
	Expires        uint64         `json:"expires"`
	CreatedAtBlock uint64         `json:"createdAtBlock"`
}

type TokenBalance struct {
	Owner            common.Address            `json:"owner"`
	TokenInstanceKey tokenkey.TokenInstanceKey `json:"tokenInstanceKey"`
	Quantity         uint64                    `json:"quantity"`
	LockedHolds      []LockedHold              `json:"lockedHolds"`
}

type LockParams struct {
	Owner            common.Address
	LockAuthority    common.Address
	TokenInstanceKey tokenkey.TokenInstanceKey
	Quantity         uint64
	// Expires is the block at which the hold is released; 0 never expires.
	Expires     uint64
	BlockNumber uint64
}

type storedHold struct {
	Key  tokenkey.TokenInstanceKey
	Hold LockedHold
}

func ownerSlot(compositeKey common.Hash) common.Hash {
	return crypto.Keccak256Hash(OwnerSalt, compositeKey[:])
}

func holdSlot(compositeKey common.Hash) common.Hash {
	return crypto.Keccak256Hash(HoldSalt, compositeKey[:])
}

// Mint records owner as the holder of a new token instance.
func Mint(access StateAccess, owner common.Address, key tokenkey.TokenInstanceKey) error {
	if err := key.Validate(); err != nil {
		return err
	}
	if owner == (common.Address{}) {
		return fmt.Errorf("owner is empty")
	}
	if _, ok := OwnerOf(access, key); ok {
		return fmt.Errorf("%w: %s", ErrAlreadyMinted, key)
	}
	access.SetState(storageutil.NodeBaseAddress, ownerSlot(key.CompositeKey()), common.BytesToHash(owner[:]))
	return nil
}

func OwnerOf(access StateAccess, key tokenkey.TokenInstanceKey) (common.Address, bool) {
	v := access.GetState(storageutil.NodeBaseAddress, ownerSlot(key.CompositeKey()))
	if v == (common.Hash{}) {
		return common.Address{}, false
	}
	return common.BytesToAddress(v[:]), true
}

func getHold(access StateAccess, compositeKey common.Hash) (*storedHold, error) {
	slot := holdSlot(compositeKey)
	if !stateblob.HasBlob(access, slot) {
		return nil, nil
	}
	sh := &storedHold{}
	if err := rlp.DecodeBytes(stateblob.GetBlob(access, slot), sh); err != nil {
		return nil, fmt.Errorf("failed to decode lock hold: %w", err)
	}
	return sh, nil
}

func Balance(access StateAccess, key tokenkey.TokenInstanceKey) (*TokenBalance, error) {
	b := &TokenBalance{TokenInstanceKey: key, LockedHolds: []LockedHold{}}
	owner, ok := OwnerOf(access, key)
	if !ok {
		return b, nil
	}
	b.Owner = owner
	b.Quantity = 1

	sh, err := getHold(access, key.CompositeKey())
	if err != nil {
		return nil, err
	}
	if sh != nil {
		b.LockedHolds = append(b.LockedHolds, sh.Hold)
	}
	return b, nil
}

func Lock(access StateAccess, params LockParams) (*TokenBalance, error) {
	key := params.TokenInstanceKey
	if params.Quantity != 1 {
		return nil, ErrInvalidQuantity
	}
	if params.LockAuthority == (common.Address{}) {
		return nil, fmt.Errorf("lock authority is empty")
	}
	if params.Expires != 0 && params.Expires <= params.BlockNumber {
		return nil, fmt.Errorf("%w: expires %d, block %d", ErrInvalidExpiry, params.Expires, params.BlockNumber)
	}

	owner, ok := OwnerOf(access, key)
	if !ok || owner != params.Owner {
		return nil, fmt.Errorf("%w: %s does not hold %s", ErrInsufficientBalance, params.Owner.Hex(), key)
	}

	compositeKey := key.CompositeKey()
	existing, err := getHold(access, compositeKey)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: %s", ErrTokenLocked, key)
	}

	sh := storedHold{
		Key: key,
		Hold: LockedHold{
			LockAuthority:  params.LockAuthority,
			Quantity:       params.Quantity,
			Expires:        params.Expires,
			CreatedAtBlock: params.BlockNumber,
		},
	}
	enc, err := rlp.EncodeToBytes(&sh)
	if err != nil {
		return nil, fmt.Errorf("failed to encode lock hold: %w", err)
	}
	stateblob.SetBlob(access, holdSlot(compositeKey), enc)

	if params.Expires != 0 {
		lockexpiration.AddToLocksExpiringAtBlock(access, params.Expires, compositeKey)
	}

	return Balance(access, key)
}

// Unlock releases the hold on key. Only the hold's lock authority may do so.
func Unlock(access StateAccess, caller common.Address, key tokenkey.TokenInstanceKey) (*TokenBalance, error) {
	compositeKey := key.CompositeKey()
	sh, err := getHold(access, compositeKey)
	if err != nil {
		return nil, err
	}
	if sh == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotLocked, key)
	}
	if sh.Hold.LockAuthority != caller {
		return nil, fmt.Errorf("%w: %s", ErrNotLockAuthority, caller.Hex())
	}

	stateblob.DeleteBlob(access, holdSlot(compositeKey))
	if sh.Hold.Expires != 0 {
		if err := lockexpiration.RemoveFromLocksExpiringAtBlock(access, sh.Hold.Expires, compositeKey); err != nil {
			return nil, err
		}
	}

	return Balance(access, key)
}

// ExpiredHold is a hold dropped by ReleaseExpired.
type ExpiredHold struct {
	TokenInstanceKey tokenkey.TokenInstanceKey
	Hold             LockedHold
}

// ReleaseExpired drops every hold whose Expires equals blockNumber.
func ReleaseExpired(access StateAccess, blockNumber uint64) ([]ExpiredHold, error) {
	expiring := slices.Collect(lockexpiration.IteratorOfLocksExpiringAtBlock(access, blockNumber))

	released := make([]ExpiredHold, 0, len(expiring))
	for _, compositeKey := range expiring {
		sh, err := getHold(access, compositeKey)
		if err != nil {
			return nil, err
		}
		if sh == nil {
			return nil, fmt.Errorf("lock hold %s expiring at block %d is missing", compositeKey.Hex(), blockNumber)
		}
		stateblob.DeleteBlob(access, holdSlot(compositeKey))
		released = append(released, ExpiredHold{TokenInstanceKey: sh.Key, Hold: sh.Hold})
	}

	lockexpiration.ClearLocksExpiringAtBlock(access, blockNumber)
	return released, nil
}
