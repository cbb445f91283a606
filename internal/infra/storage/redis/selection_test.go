package redis

import (
	"errors"
	"testing"

	"github.com/gabapcia/zkwallet/internal/onboarding"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockClient(t *testing.T, opts ...Option) (*client, redismock.ClientMock) {
	db, mock := redismock.NewClientMock()
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
	})
	return newClient(db, opts...), mock
}

func TestClient_SelectedWallet(t *testing.T) {
	t.Run("should return the stored id", func(t *testing.T) {
		c, mock := newMockClient(t)
		mock.ExpectGet("zkwallet:selected_wallet").SetVal("metamask")

		id, err := c.SelectedWallet(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "metamask", id)
	})

	t.Run("should map a missing key to no selection", func(t *testing.T) {
		c, mock := newMockClient(t)
		mock.ExpectGet("zkwallet:selected_wallet").RedisNil()

		_, err := c.SelectedWallet(t.Context())
		assert.ErrorIs(t, err, onboarding.ErrNoSelection)
	})

	t.Run("should map an empty value to no selection", func(t *testing.T) {
		c, mock := newMockClient(t)
		mock.ExpectGet("zkwallet:selected_wallet").SetVal("")

		_, err := c.SelectedWallet(t.Context())
		assert.ErrorIs(t, err, onboarding.ErrNoSelection)
	})

	t.Run("should propagate connection errors", func(t *testing.T) {
		c, mock := newMockClient(t)
		connErr := errors.New("connection refused")
		mock.ExpectGet("zkwallet:selected_wallet").SetErr(connErr)

		_, err := c.SelectedWallet(t.Context())
		assert.ErrorIs(t, err, connErr)
		assert.NotErrorIs(t, err, onboarding.ErrNoSelection)
	})

	t.Run("should scope the key to the namespace", func(t *testing.T) {
		c, mock := newMockClient(t, WithNamespace("rinkeby"))
		mock.ExpectGet("zkwallet:rinkeby:selected_wallet").SetVal("ledger")

		id, err := c.SelectedWallet(t.Context())
		require.NoError(t, err)
		assert.Equal(t, "ledger", id)
	})
}

func TestClient_SaveSelectedWallet(t *testing.T) {
	c, mock := newMockClient(t)
	mock.ExpectSet("zkwallet:selected_wallet", "metamask", 0).SetVal("OK")

	assert.NoError(t, c.SaveSelectedWallet(t.Context(), "metamask"))
}

func TestClient_RemoveSelectedWallet(t *testing.T) {
	t.Run("should delete the key", func(t *testing.T) {
		c, mock := newMockClient(t)
		mock.ExpectDel("zkwallet:selected_wallet").SetVal(1)

		assert.NoError(t, c.RemoveSelectedWallet(t.Context()))
	})

	t.Run("should propagate errors", func(t *testing.T) {
		c, mock := newMockClient(t)
		mock.ExpectDel("zkwallet:selected_wallet").SetErr(errors.New("READONLY"))

		assert.Error(t, c.RemoveSelectedWallet(t.Context()))
	})
}
