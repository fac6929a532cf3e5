package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brojonat/walletdash/service/config"
	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Flags read the environment while parsing, so .env has to be loaded first.
	envFile := os.Getenv("WALLETDASH_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		log.Fatal(err)
	}

	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "walletdash",
		Usage: "Terminal wallet dashboard for a decentralized exchange",
		Description: `Browse a wallet's transaction history, balance and stake from the terminal.

Data comes from the dashboard API, or from a read-only Postgres database when
--database-url is set. With --nats-url the history refreshes whenever a new
transaction is published for the connected wallet.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			txsCommand(),
			drawerCommand(),
			dashboardCommand(),
			versionCommand(),
		},
		// Global flags available to all commands
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Usage:   "Dashboard API URL",
				EnvVars: []string{"API_URL"},
				Value:   "http://localhost:8080",
			},
			&cli.StringFlag{
				Name:    "tx-base-url",
				Usage:   "URL transaction ids are appended to in the detail column",
				EnvVars: []string{"TX_BASE_URL"},
				Value:   config.DefaultTxBaseURL,
			},
			&cli.StringFlag{
				Name:    "database-url",
				Usage:   "Read wallet data from this Postgres database instead of the API",
				EnvVars: []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:    "nats-url",
				Usage:   "NATS server URL for live history refresh",
				EnvVars: []string{"NATS_URL"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "info",
			},
			&cli.DurationFlag{
				Name:    "fetch-timeout",
				Usage:   "Timeout of each remote fetch",
				EnvVars: []string{"FETCH_TIMEOUT"},
				Value:   30 * time.Second,
			},
			&cli.StringFlag{
				Name:    "metrics-addr",
				Usage:   "Serve /metrics and /api/v1/status on this address",
				EnvVars: []string{"METRICS_ADDR"},
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output in JSON format",
			},
		},
	}
}

// configFromFlags builds and validates the configuration from global flags,
// which already fall back to the environment.
func configFromFlags(c *cli.Context) (*config.Config, error) {
	cfg := &config.Config{
		APIURL:        c.String("api-url"),
		TxBaseURL:     c.String("tx-base-url"),
		DatabaseURL:   c.String("database-url"),
		NATSURL:       c.String("nats-url"),
		LogLevel:      c.String("log-level"),
		FetchTimeout:  c.Duration("fetch-timeout"),
		MetricsAddr:   c.String("metrics-addr"),
		WalletAddress: os.Getenv("WALLET_ADDRESS"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// versionCommand prints build information.
func versionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show version information",
		Action: func(c *cli.Context) error {
			fmt.Fprintf(c.App.Writer, "walletdash\n")
			fmt.Fprintf(c.App.Writer, "  Version: %s\n", version)
			fmt.Fprintf(c.App.Writer, "  Commit:  %s\n", commit)
			fmt.Fprintf(c.App.Writer, "  Built:   %s\n", date)
			return nil
		},
	}
}
