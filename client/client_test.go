package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/brojonat/walletdash/service/metrics"
	"github.com/brojonat/walletdash/service/store"
	"github.com/brojonat/walletdash/service/wallet"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ store.Source = (*Client)(nil)

func TestTransactions_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "GET", r.Method)
		assert.Equal(t, "/v1/history/bnb1abc", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"transactions": []map[string]interface{}{
				{
					"date":     "2024-01-02T03:04:05Z",
					"type":     "swap",
					"status":   "Success",
					"pool":     "BNB.BNB",
					"in_tx_id": "abc",
					"in":       []map[string]interface{}{{"asset": "BNB", "amount": 100000000}},
				},
				{
					"date":   "2024-01-01T00:00:00Z",
					"type":   "refund",
					"status": "Success",
				},
			},
			"count": 2,
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	records, err := client.Transactions(context.Background(), "bnb1abc")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, wallet.EventSwap, records[0].Type)
	require.NotNil(t, records[0].InTxID)
	assert.Equal(t, "abc", *records[0].InTxID)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), records[0].Date)
	assert.Equal(t, "1.00000000 BNB", records[0].Info())

	assert.Nil(t, records[1].InTxID)
}

func TestTransactions_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{
			"error": "invalid wallet address",
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	_, err := client.Transactions(context.Background(), "invalid")
	require.Error(t, err)
	assert.Equal(t, "request failed: invalid wallet address", err.Error())
}

func TestTransactions_NonJSONError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	_, err := client.Transactions(context.Background(), "bnb1abc")
	require.Error(t, err)
	assert.Equal(t, "request failed with status 502: bad gateway", err.Error())
}

func TestTransactions_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	client := NewClient(server.URL, nil, nil)
	_, err := client.Transactions(ctx, "bnb1abc")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBalance_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/balance/bnb1abc", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"coins": []map[string]interface{}{
				{"asset": "BNB", "amount": 150000000},
				{"asset": "RUNE-B1A", "amount": 2500000000},
			},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	balance, err := client.Balance(context.Background(), "bnb1abc")
	require.NoError(t, err)

	assert.Equal(t, "bnb1abc", balance.Address)
	require.Len(t, balance.Coins, 2)
	assert.Equal(t, "25.00000000 RUNE-B1A", balance.Coins[1].String())
}

func TestStake_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/stake/bnb1abc", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"address":   "bnb1abc",
			"positions": []map[string]interface{}{{"pool": "BNB.BNB", "units": 42}},
		})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	stake, err := client.Stake(context.Background(), "bnb1abc")
	require.NoError(t, err)

	require.Len(t, stake.Positions, 1)
	assert.Equal(t, wallet.StakePosition{Pool: "BNB.BNB", Units: 42}, stake.Positions[0])
}

func TestStake_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "wallet not found"})
	}))
	defer server.Close()

	client := NewClient(server.URL, nil, nil)
	_, err := client.Stake(context.Background(), "bnb1abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "wallet not found")
}

func TestInstrumentedClient_RecordsEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"coins": []interface{}{}})
	}))
	defer server.Close()

	reg := prometheus.NewRegistry()
	m := metrics.NewMetrics(reg)
	client := NewInstrumentedClient(server.URL+"/", time.Second, m, nil)

	_, err := client.Balance(context.Background(), "bnb1abc")
	require.NoError(t, err)

	expected := `
# HELP api_client_requests_total Total number of dashboard API requests
# TYPE api_client_requests_total counter
api_client_requests_total{endpoint="/v1/balance",status="2xx"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "api_client_requests_total"))
}

func TestEndpointName(t *testing.T) {
	tests := map[string]string{
		"http://api/v1/history/bnb1abc": "/v1/history",
		"http://api/v1/balance/bnb1abc": "/v1/balance",
		"http://api/v1/stake/bnb1abc":   "/v1/stake",
		"http://api/healthz":            "other",
	}
	for u, want := range tests {
		req := httptest.NewRequest("GET", u, nil)
		assert.Equal(t, want, EndpointName(req), u)
	}
}
