package txview

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/brojonat/walletdash/service/metrics"
	"github.com/brojonat/walletdash/service/scope"
	"github.com/brojonat/walletdash/service/store"
	"github.com/brojonat/walletdash/service/wallet"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestView_FetchesOncePerWallet(t *testing.T) {
	src := store.NewMockSource()
	r := record(100, wallet.EventSwap)
	r.InTxID = strPtr("abc")
	src.SetTransactions("bnb1abc", []wallet.TransactionRecord{r})

	st := store.New(src, store.Options{})
	defer st.Close()

	v := Mount(scope.New(nil), st, Config{BaseURL: testBaseURL})
	defer v.Unmount()

	assert.Equal(t, AddWalletPrompt+"\n", v.Last())
	assert.Equal(t, 0, src.CallCount("Transactions"))

	st.Connect("bnb1abc")
	st.Wait()

	assert.Equal(t, 1, src.CallCount("Transactions"))
	assert.Contains(t, v.Last(), testBaseURL+"abc")
	assert.Contains(t, v.Last(), "Total: 1")

	// Local state changes re-render without fetching.
	require.NoError(t, v.SetFilter("stake"))
	v.SetViewType(Mobile)
	st.Wait()

	assert.Equal(t, 1, src.CallCount("Transactions"))
	assert.Contains(t, v.Last(), "Total: 0")
}

func TestView_ForgetShowsPrompt(t *testing.T) {
	src := store.NewMockSource()
	st := store.New(src, store.Options{})
	defer st.Close()

	var out bytes.Buffer
	st.Connect("bnb1abc")
	v := Mount(scope.New(nil), st, Config{Output: &out})
	defer v.Unmount()
	st.Wait()

	// Mounting with a connected wallet counts as an identity edge.
	assert.Equal(t, 1, src.CallCount("Transactions"))

	st.ForgetWallet()
	st.Wait()

	assert.Equal(t, AddWalletPrompt+"\n", v.Last())
	assert.Equal(t, 1, src.CallCount("Transactions"))
	assert.Contains(t, out.String(), "Total: 0")
}

func TestView_SetFilterRejectsUnknownValues(t *testing.T) {
	st := store.New(store.NewMockSource(), store.Options{})
	defer st.Close()

	v := Mount(scope.New(nil), st, Config{})
	defer v.Unmount()

	assert.Error(t, v.SetFilter("mint"))
	assert.Equal(t, FilterAll, v.Filter())
}

func TestView_UnmountStopsRendering(t *testing.T) {
	st := store.New(store.NewMockSource(), store.Options{})
	defer st.Close()

	v := Mount(scope.New(nil), st, Config{})
	renders := v.Renders()
	v.Unmount()

	st.Connect("bnb1abc")
	st.Wait()

	assert.Equal(t, renders, v.Renders())
}

func TestView_RecordsRenders(t *testing.T) {
	m := metrics.NewMetrics(prometheus.NewRegistry())
	st := store.New(store.NewMockSource(), store.Options{Metrics: m})
	defer st.Close()

	v := Mount(scope.New(nil), st, Config{Metrics: m})
	defer v.Unmount()

	assert.Equal(t, 1, v.Renders())
}

type renderedPage struct {
	Address string `json:"address"`
	State   string `json:"state"`
	Records []struct {
		InTxID string `json:"in_tx_id"`
	} `json:"records"`
}

func decodeRenders(t *testing.T, out []byte) []renderedPage {
	t.Helper()
	var pages []renderedPage
	dec := json.NewDecoder(bytes.NewReader(out))
	for {
		var p renderedPage
		err := dec.Decode(&p)
		if errors.Is(err, io.EOF) {
			return pages
		}
		require.NoError(t, err)
		pages = append(pages, p)
	}
}

func TestView_SwitchingWalletNeverShowsOtherWalletRecords(t *testing.T) {
	src := store.NewMockSource()
	for _, addr := range []string{"bnb1one", "bnb1two"} {
		r := record(100, wallet.EventSwap)
		r.InTxID = strPtr("tx-" + addr)
		src.SetTransactions(addr, []wallet.TransactionRecord{r})
	}

	st := store.New(src, store.Options{})
	defer st.Close()

	var out bytes.Buffer
	v := Mount(scope.New(nil), st, Config{JSON: true, Output: &out})
	defer v.Unmount()

	st.Connect("bnb1one")
	st.Wait()

	src.Hold("bnb1two")
	defer src.Release("bnb1two")
	st.Connect("bnb1two")

	// The fetch for the new wallet is outstanding.
	var pending renderedPage
	require.NoError(t, json.Unmarshal([]byte(v.Last()), &pending))
	assert.Equal(t, "bnb1two", pending.Address)
	assert.Equal(t, "loading", pending.State)
	assert.Empty(t, pending.Records)

	src.Release("bnb1two")
	st.Wait()

	pages := decodeRenders(t, out.Bytes())
	require.NotEmpty(t, pages)
	for i, p := range pages {
		for _, r := range p.Records {
			assert.Equal(t, "tx-"+p.Address, r.InTxID, "render %d pairs %s with another wallet's records", i, p.Address)
		}
	}

	last := pages[len(pages)-1]
	assert.Equal(t, "bnb1two", last.Address)
	assert.Equal(t, "success", last.State)
	require.Len(t, last.Records, 1)
}

func TestView_PageIgnoresCellOfAnotherWallet(t *testing.T) {
	src := store.NewMockSource()
	st := store.New(src, store.Options{})
	defer st.Close()

	st.Connect("bnb1one")
	v := Mount(scope.New(nil), st, Config{})
	defer v.Unmount()
	st.Wait()

	src.Hold("bnb1two")
	defer src.Release("bnb1two")
	st.Connect("bnb1two")

	p := v.Page()
	assert.Equal(t, store.Identity("bnb1two"), p.Identity)
	assert.Equal(t, "loading", p.State())
}
