package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/brojonat/walletdash/service/metrics"
	"github.com/brojonat/walletdash/service/wallet"
)

// API paths. Each takes the wallet address as its last segment.
const (
	historyPath = "/v1/history/"
	balancePath = "/v1/balance/"
	stakePath   = "/v1/stake/"
)

// Client is the HTTP client for the dashboard API. It implements store.Source.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new dashboard API client.
func NewClient(baseURL string, httpClient *http.Client, logger *slog.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}
}

// NewInstrumentedClient is NewClient with request metrics recorded per endpoint.
func NewInstrumentedClient(baseURL string, timeout time.Duration, m *metrics.Metrics, logger *slog.Logger) *Client {
	httpClient := &http.Client{
		Timeout:   timeout,
		Transport: metrics.InstrumentTransport(m, nil, EndpointName),
	}
	return NewClient(baseURL, httpClient, logger)
}

// EndpointName maps a request to its API route without the address, for
// metric labels.
func EndpointName(req *http.Request) string {
	path := req.URL.Path
	for _, prefix := range []string{historyPath, balancePath, stakePath} {
		if strings.HasPrefix(path, prefix) {
			return strings.TrimSuffix(prefix, "/")
		}
	}
	return "other"
}

// Transactions retrieves the transaction history of address.
func (c *Client) Transactions(ctx context.Context, address string) ([]wallet.TransactionRecord, error) {
	var response struct {
		Transactions []wallet.TransactionRecord `json:"transactions"`
		Count        int                        `json:"count"`
	}
	if err := c.get(ctx, historyPath, address, &response); err != nil {
		return nil, err
	}

	c.logger.Debug("transactions fetched", "address", address, "count", len(response.Transactions))
	return response.Transactions, nil
}

// Balance retrieves the coins held by address.
func (c *Client) Balance(ctx context.Context, address string) (*wallet.Balance, error) {
	var balance wallet.Balance
	if err := c.get(ctx, balancePath, address, &balance); err != nil {
		return nil, err
	}
	if balance.Address == "" {
		balance.Address = address
	}

	c.logger.Debug("balance fetched", "address", address, "coins", len(balance.Coins))
	return &balance, nil
}

// Stake retrieves the pool positions held by address.
func (c *Client) Stake(ctx context.Context, address string) (*wallet.Stake, error) {
	var stake wallet.Stake
	if err := c.get(ctx, stakePath, address, &stake); err != nil {
		return nil, err
	}
	if stake.Address == "" {
		stake.Address = address
	}

	c.logger.Debug("stake fetched", "address", address, "positions", len(stake.Positions))
	return &stake, nil
}

func (c *Client) get(ctx context.Context, path, address string, out interface{}) error {
	u := c.baseURL + path + url.PathEscape(address)
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseErrorResponse(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// parseErrorResponse attempts to parse an error response from the server.
func (c *Client) parseErrorResponse(resp *http.Response) error {
	var errResp struct {
		Error string `json:"error"`
	}

	body, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error == "" {
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return fmt.Errorf("request failed: %s", errResp.Error)
}
