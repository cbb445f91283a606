// Package ethwallet provides locally held Ethereum wallets: private key
// signers, a provider that watches the node they are connected to, and a
// selector choosing among configured wallets.
package ethwallet

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"strings"

	"github.com/gabapcia/zkwallet/internal/rollup"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// KeySigner signs personal messages with an in-memory private key.
type KeySigner struct {
	key     *ecdsa.PrivateKey
	address common.Address
}

var _ rollup.Signer = (*KeySigner)(nil)

// NewKeySigner parses a hex encoded secp256k1 private key, with or without
// the 0x prefix.
func NewKeySigner(hexKey string) (*KeySigner, error) {
	key, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(hexKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	return &KeySigner{
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (s *KeySigner) Address() common.Address {
	return s.address
}

// SignMessage signs msg with the personal_sign prefix. The recovery id is
// returned as 27 or 28, like browser wallets do.
func (s *KeySigner) SignMessage(_ context.Context, msg []byte) ([]byte, error) {
	sig, err := crypto.Sign(accounts.TextHash(msg), s.key)
	if err != nil {
		return nil, err
	}
	sig[crypto.RecoveryIDOffset] += 27
	return sig, nil
}
