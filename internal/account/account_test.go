package account

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestState(t *testing.T) {
	t.Run("should track login state", func(t *testing.T) {
		s := NewState()

		s.SetSelectedWallet("ledger")
		s.SetLoggedIn(true)
		s.SetLoadingHint(HintLoadingData)

		assert.Equal(t, "ledger", s.SelectedWallet())
		assert.True(t, s.IsLoggedIn())
		assert.Equal(t, HintLoadingData, s.LoadingHint())
	})

	t.Run("should reset state and run hooks on logout", func(t *testing.T) {
		s := NewState()
		s.SetSelectedWallet("ledger")
		s.SetLoggedIn(true)
		s.SetLoadingHint(HintFollowInstructions)

		calls := 0
		s.OnLogout(func(ctx context.Context) { calls++ })
		s.OnLogout(func(ctx context.Context) { calls++ })

		s.Logout(t.Context())

		assert.Empty(t, s.SelectedWallet())
		assert.False(t, s.IsLoggedIn())
		assert.Equal(t, HintNone, s.LoadingHint())
		assert.Equal(t, 2, calls)
	})
}
