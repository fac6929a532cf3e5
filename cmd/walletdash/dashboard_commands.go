package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/brojonat/walletdash/service/clipboard"
	"github.com/brojonat/walletdash/service/store"
	"github.com/brojonat/walletdash/service/txview"
	"github.com/urfave/cli/v2"
)

// dashboardCommand runs the interactive dashboard.
func dashboardCommand() *cli.Command {
	return &cli.Command{
		Name:      "dashboard",
		Usage:     "Run the interactive wallet dashboard",
		ArgsUsage: "[wallet_address]",
		Description: `Read commands from stdin and re-render the dashboard as data arrives.
The given wallet, or WALLET_ADDRESS, is connected on start. Run 'help' for
commands.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "view",
				Usage: "Column layout (desktop, mobile)",
				Value: string(txview.Desktop),
			},
		},
		Action: func(c *cli.Context) error {
			viewType, err := txview.ParseViewType(c.String("view"))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(c.Context)
			defer cancel()
			c.Context = ctx

			rt, err := setupRuntime(c, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			d := newDashboard(rt.store, c.App.Writer, dashboardConfig{
				BaseURL:   rt.cfg.TxBaseURL,
				View:      viewType,
				Clipboard: clipboard.NewSystem(),
				Logger:    rt.logger,
				Metrics:   rt.metrics,
			})
			defer d.Close()

			initial := rt.cfg.WalletAddress
			if c.NArg() > 0 {
				initial = c.Args().Get(0)
			}
			if initial != "" {
				rt.store.Connect(store.Identity(initial))
			}

			lines := make(chan string)
			go func() {
				defer close(lines)
				scanner := bufio.NewScanner(c.App.Reader)
				for scanner.Scan() {
					select {
					case lines <- scanner.Text():
					case <-ctx.Done():
						return
					}
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			fmt.Fprintln(c.App.ErrWriter, "Dashboard ready. Type 'help' for commands, Ctrl+C to quit.")
			for {
				select {
				case sig := <-sigChan:
					rt.logger.Info("shutdown signal received", "signal", sig.String())
					return nil
				case line, ok := <-lines:
					if !ok {
						return nil
					}
					quit, err := d.exec(line)
					if err != nil {
						fmt.Fprintf(c.App.ErrWriter, "Error: %v\n", err)
					}
					if quit {
						return nil
					}
				}
			}
		},
	}
}
