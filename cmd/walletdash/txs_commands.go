package main

import (
	"fmt"

	"github.com/brojonat/walletdash/service/remotedata"
	"github.com/brojonat/walletdash/service/scope"
	"github.com/brojonat/walletdash/service/store"
	"github.com/brojonat/walletdash/service/txview"
	"github.com/urfave/cli/v2"
)

// txsCommand prints the transaction history of a wallet.
func txsCommand() *cli.Command {
	return &cli.Command{
		Name:      "txs",
		Usage:     "Show the transaction history of a wallet",
		ArgsUsage: "<wallet_address>",
		Description: `Fetch and print a wallet's transaction history, newest first.

The --jq expression is evaluated against each record's JSON form and keeps the
records for which it is truthy.

Examples:
  walletdash txs bnb1abc
  walletdash txs bnb1abc --view mobile --filter swap
  walletdash txs bnb1abc --jq '.in_tx_id != null' --json`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "view",
				Usage: "Column layout (desktop, mobile)",
				Value: string(txview.Desktop),
			},
			&cli.StringFlag{
				Name:  "filter",
				Usage: "Only show one transaction type (all, swap, doubleSwap, stake, unstake, add, refund)",
				Value: txview.FilterAll,
			},
			&cli.StringFlag{
				Name:  "jq",
				Usage: "jq expression records must satisfy",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("wallet address is required")
			}
			address := store.Identity(c.Args().Get(0))

			viewType, err := txview.ParseViewType(c.String("view"))
			if err != nil {
				return err
			}
			filter, err := txview.ParseFilter(c.String("filter"))
			if err != nil {
				return err
			}
			var query *txview.Query
			if expr := c.String("jq"); expr != "" {
				if query, err = txview.CompileQuery(expr); err != nil {
					return err
				}
			}

			rt, err := setupRuntime(c, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			v := txview.Mount(scope.New(nil), rt.store, txview.Config{
				BaseURL: rt.cfg.TxBaseURL,
				View:    viewType,
				Filter:  filter,
				Query:   query,
				JSON:    c.Bool("json"),
				Logger:  rt.logger,
				Metrics: rt.metrics,
			})
			defer v.Unmount()

			rt.store.Connect(address)
			rt.store.Wait()

			fmt.Fprint(c.App.Writer, v.Last())
			return exitOnFailure(rt.store.Transactions().Get())
		},
	}
}

// exitOnFailure turns a failed fetch into a non-zero exit. The error text has
// already been rendered.
func exitOnFailure[V any](rd remotedata.RemoteData[V]) error {
	if remotedata.IsFailure(rd) {
		return cli.Exit("", 1)
	}
	return nil
}
