package useraccount

import (
	"bufio"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/google/uuid"
	"golang.org/x/term"
)

// WalletPath is relative to the XDG config home.
const WalletPath = "nodebase/wallet.json"

var ErrWalletExists = errors.New("a wallet already exists")

var scryptN, scryptP = keystore.StandardScryptN, keystore.StandardScryptP

type UserAccount struct {
	Address    common.Address
	PrivateKey *ecdsa.PrivateKey
}

func Load() (*UserAccount, error) {
	walletPath, err := xdg.ConfigFile(WalletPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get config file path: %w", err)
	}

	walletBytes, err := os.ReadFile(walletPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read wallet file: %w", err)
	}

	password, err := ReadPassword(false)
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}

	key, err := keystore.DecryptKey(walletBytes, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt private key: %w", err)
	}

	return &UserAccount{
		Address:    crypto.PubkeyToAddress(key.PrivateKey.PublicKey),
		PrivateKey: key.PrivateKey,
	}, nil
}

// Save encrypts key with password into the wallet file at walletPath. A nil
// key generates a new one. An existing wallet is never overwritten, an empty
// file is.
func Save(walletPath, password string, key *ecdsa.PrivateKey) (common.Address, error) {
	info, err := os.Stat(walletPath)
	switch {
	case err == nil && info.Size() != 0:
		return common.Address{}, fmt.Errorf("%w at %s", ErrWalletExists, walletPath)
	case err != nil && !errors.Is(err, os.ErrNotExist):
		return common.Address{}, fmt.Errorf("failed to stat wallet %s: %w", walletPath, err)
	}

	if key == nil {
		key, err = crypto.GenerateKey()
		if err != nil {
			return common.Address{}, fmt.Errorf("failed to generate key: %w", err)
		}
	}

	address := crypto.PubkeyToAddress(key.PublicKey)
	keyJSON, err := keystore.EncryptKey(&keystore.Key{
		Id:         uuid.New(),
		Address:    address,
		PrivateKey: key,
	}, password, scryptN, scryptP)
	if err != nil {
		return common.Address{}, fmt.Errorf("failed to encrypt key: %w", err)
	}

	if err := os.WriteFile(walletPath, keyJSON, 0o600); err != nil {
		return common.Address{}, fmt.Errorf("failed to write wallet %s: %w", walletPath, err)
	}

	return address, nil
}

// ReadPassword first checks WALLET_PASSWORD, then reads a password from
// stdin if piped, or interactively if in a terminal. With confirm set the
// password is asked for twice.
func ReadPassword(confirm bool) (string, error) {
	password, ok := os.LookupEnv("WALLET_PASSWORD")
	if ok {
		return password, nil
	}

	if term.IsTerminal(int(syscall.Stdin)) {
		password, err := prompt("Enter wallet password: ")
		if err != nil {
			return "", err
		}

		if confirm {
			again, err := prompt("Confirm password: ")
			if err != nil {
				return "", err
			}
			if password != again {
				return "", fmt.Errorf("passwords did not match")
			}
		}

		return password, nil
	}

	// piped input
	reader := bufio.NewReader(os.Stdin)
	password, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(password), nil
}

func prompt(text string) (string, error) {
	fmt.Print(text)
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
