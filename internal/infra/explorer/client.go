// Package explorer reads account history and withdrawal timings from the
// rollup's REST API.
package explorer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gabapcia/zkwallet/internal/history"
	"github.com/gabapcia/zkwallet/internal/withdrawal"

	"github.com/ethereum/go-ethereum/common"
	"github.com/hashicorp/go-retryablehttp"
)

// ErrUnexpectedStatus is returned for any non-2xx response.
var ErrUnexpectedStatus = errors.New("unexpected status code")

// DefaultHosts maps network names to the REST API host.
var DefaultHosts = map[string]string{
	"mainnet":   "https://api.zksync.io",
	"rinkeby":   "https://rinkeby-api.zksync.io",
	"ropsten":   "https://ropsten-api.zksync.io",
	"localhost": "http://127.0.0.1:3001",
}

type client struct {
	host       string
	httpClient *retryablehttp.Client
}

var (
	_ history.Explorer  = (*client)(nil)
	_ withdrawal.Source = (*client)(nil)
)

// NewClient returns an explorer client for the API served at host.
func NewClient(host string, httpClient *retryablehttp.Client) *client {
	return &client{
		host:       strings.TrimRight(host, "/"),
		httpClient: httpClient,
	}
}

func (c *client) get(ctx context.Context, path string, out any) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, c.host+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 512))
		return fmt.Errorf("%w: GET %s: %d %s", ErrUnexpectedStatus, path, res.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// History returns limit records of address starting at offset, newest first.
func (c *client) History(ctx context.Context, address common.Address, offset, limit int) ([]history.Transaction, error) {
	path := fmt.Sprintf("/api/v0.1/account/%s/history/%d/%d", address.Hex(), offset, limit)

	var txs []history.Transaction
	if err := c.get(ctx, path, &txs); err != nil {
		return nil, err
	}
	if txs == nil {
		txs = []history.Transaction{}
	}
	return txs, nil
}

// WithdrawalProcessingTime returns the expected normal and fast withdrawal times.
func (c *client) WithdrawalProcessingTime(ctx context.Context) (withdrawal.ProcessingTime, error) {
	var t withdrawal.ProcessingTime
	if err := c.get(ctx, "/api/v0.1/withdrawal_processing_time", &t); err != nil {
		return withdrawal.ProcessingTime{}, err
	}
	return t, nil
}
