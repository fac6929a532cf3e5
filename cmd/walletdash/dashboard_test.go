package main

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/brojonat/walletdash/service/clipboard"
	"github.com/brojonat/walletdash/service/drawer"
	"github.com/brojonat/walletdash/service/store"
	"github.com/brojonat/walletdash/service/txview"
	"github.com/brojonat/walletdash/service/wallet"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDashboard(t *testing.T) (*dashboard, *store.MockSource, *store.Store, *bytes.Buffer, *clipboard.Mock) {
	t.Helper()
	color.NoColor = true

	src := store.NewMockSource()
	st := store.New(src, store.Options{})
	clip := clipboard.NewMock()

	var out bytes.Buffer
	d := newDashboard(st, &out, dashboardConfig{
		BaseURL:   "https://explorer.example.com/tx/",
		Clipboard: clip,
	})
	t.Cleanup(func() {
		d.Close()
		st.Close()
	})
	return d, src, st, &out, clip
}

func TestDashboard_ConnectFetchesHistoryOnce(t *testing.T) {
	d, src, st, _, _ := newTestDashboard(t)
	src.SetTransactions("bnb1abc", []wallet.TransactionRecord{{Type: wallet.EventSwap, Status: "Success"}})

	quit, err := d.exec("connect bnb1abc")
	require.NoError(t, err)
	assert.False(t, quit)
	st.Wait()

	assert.Equal(t, 1, src.CallCount("Transactions"))
	assert.Contains(t, d.txs.Last(), "Total: 1")

	// Drawer and view changes never refetch the history.
	for _, line := range []string{"open", "filter stake", "view mobile", "close"} {
		_, err := d.exec(line)
		require.NoError(t, err, line)
	}
	st.Wait()

	assert.Equal(t, 1, src.CallCount("Transactions"))
	assert.Equal(t, 1, src.CallCount("Balance"))
	assert.Equal(t, 1, src.CallCount("Stake"))
	assert.Equal(t, "stake", d.txs.Filter())
}

func TestDashboard_ForgetShowsPrompt(t *testing.T) {
	d, _, st, _, _ := newTestDashboard(t)

	_, err := d.exec("connect bnb1abc")
	require.NoError(t, err)
	_, err = d.exec("forget")
	require.NoError(t, err)
	st.Wait()

	assert.Equal(t, txview.AddWalletPrompt+"\n", d.txs.Last())
	assert.Equal(t, drawer.StatusDisconnected, d.drawer.Status())
}

func TestDashboard_CopyNotifies(t *testing.T) {
	d, _, _, out, clip := newTestDashboard(t)

	_, err := d.exec("connect bnb1abc")
	require.NoError(t, err)
	_, err = d.exec("copy")
	require.NoError(t, err)

	assert.Equal(t, []string{"bnb1abc"}, clip.Copies())
	assert.Contains(t, out.String(), drawer.CopyMessage)
}

func TestDashboard_RecipientField(t *testing.T) {
	d, _, _, out, _ := newTestDashboard(t)

	_, err := d.exec("type So11111111111111111111111111111111111111112")
	assert.Error(t, err)

	_, err = d.exec("recipient")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "- Remove recipient address")

	_, err = d.exec("type So11111111111111111111111111111111111111112")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✓ valid address")

	_, err = d.exec("type not-an-address")
	require.NoError(t, err)
	assert.Contains(t, out.String(), "✗ ")
}

func TestDashboard_Errors(t *testing.T) {
	d, _, _, _, _ := newTestDashboard(t)

	tests := []string{
		"connect",
		"filter mint",
		"view tablet",
		"dance",
	}
	for _, line := range tests {
		t.Run(line, func(t *testing.T) {
			quit, err := d.exec(line)
			assert.Error(t, err)
			assert.False(t, quit)
		})
	}
}

func TestDashboard_QuitAndBlankLines(t *testing.T) {
	d, _, _, _, _ := newTestDashboard(t)

	quit, err := d.exec("   ")
	require.NoError(t, err)
	assert.False(t, quit)

	quit, err = d.exec("quit")
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestDashboard_Show(t *testing.T) {
	d, _, st, out, _ := newTestDashboard(t)
	st.Wait()
	out.Reset()

	_, err := d.exec("show")
	require.NoError(t, err)

	assert.Contains(t, out.String(), "+ Add recipient address")
	assert.Contains(t, out.String(), "Wallet: disconnected")
	assert.Contains(t, out.String(), txview.AddWalletPrompt)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestDashboard_WriteErrorsAreReported(t *testing.T) {
	st := store.New(store.NewMockSource(), store.Options{})
	var logs bytes.Buffer
	d := newDashboard(st, failingWriter{}, dashboardConfig{
		Clipboard: clipboard.NewMock(),
		Logger:    slog.New(slog.NewJSONHandler(&logs, nil)),
	})
	t.Cleanup(func() {
		d.Close()
		st.Close()
	})

	_, err := d.exec("show")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pipe")

	_, err = d.exec("help")
	assert.Error(t, err)

	_, err = d.exec("recipient")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "failed to write recipient field")

	_, err = d.exec("type So11111111111111111111111111111111111111112")
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "failed to write recipient feedback")
}
