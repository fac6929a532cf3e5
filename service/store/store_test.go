package store

import (
	"errors"
	"testing"
	"time"

	"github.com/brojonat/walletdash/service/remotedata"
	"github.com/brojonat/walletdash/service/wallet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_ConnectDoesNotFetch(t *testing.T) {
	src := NewMockSource()
	s := New(src, Options{})
	defer s.Close()

	identityChanges := 0
	s.SubscribeIdentity(func() { identityChanges++ })

	s.Connect("bnb1abc")
	s.Connect("bnb1abc")
	s.Wait()

	assert.Equal(t, Identity("bnb1abc"), s.Identity())
	assert.Equal(t, 1, identityChanges)
	assert.Empty(t, src.Calls())
}

func TestStore_GetTxByAddress(t *testing.T) {
	src := NewMockSource()
	txID := "abc"
	src.SetTransactions("bnb1abc", []wallet.TransactionRecord{
		{Date: time.Unix(100, 0), Type: wallet.EventSwap, InTxID: &txID},
	})

	s := New(src, Options{})
	defer s.Close()

	s.Connect("bnb1abc")
	s.GetTxByAddress(s.Identity())
	s.GetTxByAddress(s.Identity())
	s.Wait()

	assert.Equal(t, 1, src.CallCount("Transactions"))

	records := remotedata.Fold(s.Transactions().Get(),
		func() []wallet.TransactionRecord { return nil },
		func() []wallet.TransactionRecord { return nil },
		func(error) []wallet.TransactionRecord { return nil },
		func(r []wallet.TransactionRecord) []wallet.TransactionRecord { return r },
	)
	require.Len(t, records, 1)
	assert.Equal(t, wallet.EventSwap, records[0].Type)
}

func TestStore_RefreshBalanceAndStake(t *testing.T) {
	src := NewMockSource()
	src.SetBalance("bnb1abc", &wallet.Balance{
		Address: "bnb1abc",
		Coins:   []wallet.Coin{{Asset: "BNB", Amount: 100000000}},
	})

	s := New(src, Options{})
	defer s.Close()

	s.Connect("bnb1abc")
	s.RefreshBalance("bnb1abc")
	s.RefreshStake("bnb1abc")
	s.Wait()

	assert.Equal(t, 1, src.CallCount("Balance"))
	assert.Equal(t, 1, src.CallCount("Stake"))
	assert.True(t, remotedata.IsSuccess(s.Balance().Get()))
	assert.True(t, remotedata.IsSuccess(s.Stake().Get()))
}

func TestStore_ForgetWalletClearsEveryCell(t *testing.T) {
	src := NewMockSource()
	s := New(src, Options{})
	defer s.Close()

	s.Connect("bnb1abc")
	s.GetTxByAddress("bnb1abc")
	s.RefreshBalance("bnb1abc")
	s.RefreshStake("bnb1abc")
	s.Wait()

	s.ForgetWallet()
	s.Wait()

	assert.Equal(t, Identity(""), s.Identity())
	assert.True(t, remotedata.IsNotAsked(s.Transactions().Get()))
	assert.True(t, remotedata.IsNotAsked(s.Balance().Get()))
	assert.True(t, remotedata.IsNotAsked(s.Stake().Get()))

	// Clearing issued no requests.
	assert.Len(t, src.Calls(), 3)
}

func TestStore_SwitchingWalletDropsOtherWalletBalance(t *testing.T) {
	src := NewMockSource()
	s := New(src, Options{})
	defer s.Close()

	s.Connect("bnb1abc")
	s.RefreshBalance("bnb1abc")
	s.Wait()
	require.True(t, remotedata.IsSuccess(s.Balance().Get()))

	s.Connect("bnb1def")
	assert.True(t, remotedata.IsNotAsked(s.Balance().Get()))
}

func TestStore_FetchErrorsBecomeFailures(t *testing.T) {
	src := NewMockSource()
	src.SetError(errors.New("request failed with status 502"))

	s := New(src, Options{})
	defer s.Close()

	s.Connect("bnb1abc")
	s.GetTxByAddress("bnb1abc")
	s.Wait()

	msg := remotedata.Fold(s.Transactions().Get(),
		func() string { return "" },
		func() string { return "" },
		func(err error) string { return err.Error() },
		func([]wallet.TransactionRecord) string { return "" },
	)
	assert.Equal(t, "request failed with status 502", msg)
}

func TestStore_RefreshTransactionsUsesConnectedWallet(t *testing.T) {
	src := NewMockSource()
	s := New(src, Options{})
	defer s.Close()

	s.RefreshTransactions()
	s.Wait()
	assert.Equal(t, 0, src.CallCount("Transactions"))

	s.Connect("bnb1abc")
	s.RefreshTransactions()
	s.Wait()
	assert.Equal(t, []MockCall{{Method: "Transactions", Address: "bnb1abc"}}, src.Calls())
}
