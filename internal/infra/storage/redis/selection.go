package redis

import (
	"context"
	"errors"

	"github.com/gabapcia/zkwallet/internal/onboarding"

	redis "github.com/redis/go-redis/v9"
)

// selectedWalletKey returns the key holding the last selected wallet id.
//
// Format: "zkwallet:selected_wallet" or "zkwallet:{namespace}:selected_wallet"
func (c *client) selectedWalletKey() string {
	if c.namespace == "" {
		return keyPrefix + ":selected_wallet"
	}
	return keyPrefix + ":" + c.namespace + ":selected_wallet"
}

// SelectedWallet returns the persisted wallet id or onboarding.ErrNoSelection.
func (c *client) SelectedWallet(ctx context.Context) (string, error) {
	id, err := c.conn.Get(ctx, c.selectedWalletKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "", onboarding.ErrNoSelection
	}
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", onboarding.ErrNoSelection
	}
	return id, nil
}

// SaveSelectedWallet persists walletID without expiration.
func (c *client) SaveSelectedWallet(ctx context.Context, walletID string) error {
	return c.conn.Set(ctx, c.selectedWalletKey(), walletID, 0).Err()
}

func (c *client) RemoveSelectedWallet(ctx context.Context) error {
	return c.conn.Del(ctx, c.selectedWalletKey()).Err()
}

var _ onboarding.SelectionStore = (*client)(nil)
