package server

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/brojonat/walletdash/service/remotedata"
	"github.com/brojonat/walletdash/service/store"
)

// cellStatus describes one remote data cell.
type cellStatus struct {
	State    string `json:"state"`
	Identity string `json:"identity,omitempty"`
	Error    string `json:"error,omitempty"`
}

type statusResponse struct {
	Wallet       string     `json:"wallet,omitempty"`
	Connected    bool       `json:"connected"`
	Transactions cellStatus `json:"transactions"`
	Balance      cellStatus `json:"balance"`
	Stake        cellStatus `json:"stake"`
}

func describe[V any](cell *store.Cell[V]) cellStatus {
	id, rd := cell.Snapshot()
	return remotedata.Fold(rd,
		func() cellStatus { return cellStatus{State: remotedata.TagNotAsked.String()} },
		func() cellStatus {
			return cellStatus{State: remotedata.TagLoading.String(), Identity: id.String()}
		},
		func(err error) cellStatus {
			return cellStatus{State: remotedata.TagFailure.String(), Identity: id.String(), Error: err.Error()}
		},
		func(V) cellStatus {
			return cellStatus{State: remotedata.TagSuccess.String(), Identity: id.String()}
		},
	)
}

// handleStatus reports the connected wallet and the state of every cell.
func handleStatus(st *store.Store) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := st.Identity()
		writeJSON(w, statusResponse{
			Wallet:       id.String(),
			Connected:    id.Present(),
			Transactions: describe(st.Transactions()),
			Balance:      describe(st.Balance()),
			Stake:        describe(st.Stake()),
		}, http.StatusOK)
	})
}

// handleRefresh refetches every resource of the connected wallet.
func handleRefresh(st *store.Store, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := st.Identity()
		if !id.Present() {
			writeError(w, "no wallet connected", http.StatusConflict)
			return
		}

		st.RefreshTransactions()
		st.RefreshBalance(id)
		st.RefreshStake(id)

		logger.InfoContext(r.Context(), "refresh requested", "wallet", id.String())
		writeJSON(w, map[string]string{"wallet": id.String()}, http.StatusAccepted)
	})
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
