package main

import (
	"fmt"

	"github.com/brojonat/walletdash/service/clipboard"
	"github.com/brojonat/walletdash/service/drawer"
	"github.com/brojonat/walletdash/service/notify"
	"github.com/brojonat/walletdash/service/scope"
	"github.com/brojonat/walletdash/service/store"
	"github.com/urfave/cli/v2"
)

// drawerCommand prints the wallet drawer: balance and stake.
func drawerCommand() *cli.Command {
	return &cli.Command{
		Name:      "drawer",
		Usage:     "Show the balance and stake of a wallet",
		ArgsUsage: "<wallet_address>",
		Description: `Open the wallet drawer, which refreshes the wallet's balance and stake,
and print it once both have loaded.

Example:
  walletdash drawer bnb1abc --copy`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "copy",
				Usage: "Copy the wallet address to the clipboard",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("wallet address is required")
			}
			address := store.Identity(c.Args().Get(0))

			rt, err := setupRuntime(c, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			d := drawer.Mount(scope.New(nil), rt.store, drawer.Config{
				Clipboard: clipboard.NewSystem(),
				Notifier:  notify.NewTerminal(c.App.ErrWriter),
				Logger:    rt.logger,
				Metrics:   rt.metrics,
			})
			defer d.Unmount()

			rt.store.Connect(address)
			d.Toggle()
			rt.store.Wait()

			if c.Bool("copy") {
				d.CopyWallet()
			}

			if c.Bool("json") {
				if err := d.Panel().RenderJSON(c.App.Writer); err != nil {
					return err
				}
			} else {
				fmt.Fprint(c.App.Writer, d.Last())
			}

			if err := exitOnFailure(rt.store.Balance().Get()); err != nil {
				return err
			}
			return exitOnFailure(rt.store.Stake().Get())
		},
	}
}
