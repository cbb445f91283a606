package account

import (
	"context"
	"math/big"
	"strings"

	"github.com/gabapcia/zkwallet/internal/pkg/logger"

	"github.com/ethereum/go-ethereum/common"
)

// Session is what the change handler needs from the wallet controller.
type Session interface {
	// CurrentAddress returns the connected address, or false when logged out.
	CurrentAddress() (common.Address, bool)

	// Logout disconnects the wallet and clears every cache.
	Logout(ctx context.Context)

	// Reconnect drops the current session and rebuilds it for the wallet's
	// current account, keeping the wallet selection. It logs the user out
	// and returns false when the rebuild fails.
	Reconnect(ctx context.Context) bool
}

// changeHandler logs the user out when the wallet moves to another
// network and resyncs the session when the active account changes.
type changeHandler struct {
	session         Session
	expectedChainID string
}

var _ ChangeHandler = (*changeHandler)(nil)

// NewChangeHandler returns a ChangeHandler for a wallet that must stay on
// expectedChainID, given as a decimal or 0x-prefixed hex string. An empty
// expectedChainID accepts any network.
func NewChangeHandler(session Session, expectedChainID string) *changeHandler {
	return &changeHandler{
		session:         session,
		expectedChainID: normalizeChainID(expectedChainID),
	}
}

func (h *changeHandler) NetworkChanged(ctx context.Context, chainID string) {
	if h.expectedChainID == "" || normalizeChainID(chainID) == h.expectedChainID {
		logger.Info(ctx, "wallet network changed", "chain.id", chainID)
		return
	}

	logger.Warn(ctx, "wallet switched to an unsupported network", "chain.id", chainID, "chain.expected", h.expectedChainID)
	h.session.Logout(ctx)
}

func (h *changeHandler) AccountsChanged(ctx context.Context, accounts []common.Address) {
	if len(accounts) == 0 {
		logger.Info(ctx, "wallet exposes no accounts anymore")
		h.session.Logout(ctx)
		return
	}

	current, ok := h.session.CurrentAddress()
	if ok && current == accounts[0] {
		return
	}

	logger.Info(ctx, "wallet account changed", "wallet.address", accounts[0].Hex())
	if !h.session.Reconnect(ctx) {
		logger.Warn(ctx, "could not reconnect after account change")
	}
}

// normalizeChainID renders a chain id as lowercase hex without leading zeros.
func normalizeChainID(chainID string) string {
	chainID = strings.ToLower(strings.TrimSpace(chainID))
	if chainID == "" {
		return ""
	}

	if strings.HasPrefix(chainID, "0x") {
		trimmed := strings.TrimLeft(chainID[2:], "0")
		if trimmed == "" {
			trimmed = "0"
		}
		return "0x" + trimmed
	}

	n, ok := new(big.Int).SetString(chainID, 10)
	if !ok {
		return chainID
	}
	return "0x" + n.Text(16)
}
