package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordFetch(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordFetchStarted("transactions", "identity")
	m.RecordFetchStarted("transactions", "identity")
	m.RecordFetchCompleted("transactions", "success", 0.2)
	m.RecordFetchCompleted("transactions", "stale", 0.4)
	m.RecordCellReset("balance")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.fetchesStartedTotal.WithLabelValues("transactions", "identity")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchesTotal.WithLabelValues("transactions", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fetchesTotal.WithLabelValues("transactions", "stale")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cellResetsTotal.WithLabelValues("balance")))
}

func TestRecordClipboardCopy(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.RecordClipboardCopy(nil)
	m.RecordClipboardCopy(errors.New("no clipboard utility"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.clipboardCopiesTotal.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.clipboardCopiesTotal.WithLabelValues("error")))
}

func TestStatusCodeToString(t *testing.T) {
	tests := map[int]string{
		0:   "error",
		200: "2xx",
		204: "2xx",
		302: "3xx",
		404: "4xx",
		503: "5xx",
		700: "unknown",
	}
	for code, want := range tests {
		assert.Equal(t, want, statusCodeToString(code), "code %d", code)
	}
}

func TestInstrumentTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	m := NewMetrics(prometheus.NewRegistry())
	client := &http.Client{
		Transport: InstrumentTransport(m, nil, func(r *http.Request) string { return r.URL.Path }),
	}

	resp, err := client.Get(server.URL + "/ok")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.Get(server.URL + "/missing")
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("/ok", "2xx")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.httpRequestsTotal.WithLabelValues("/missing", "4xx")))
}
