package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia/ops-console/internal/config"
	"github.com/custodia/ops-console/internal/logger"
	"github.com/custodia/ops-console/internal/services"
	"github.com/custodia/ops-console/internal/tui"
	"github.com/custodia/ops-console/internal/utils"
)

func main() {
	logger.Init()
	utils.LoadEnvironment()

	cfg := config.NewConfig()
	cfg.LoadFromEnvironment()

	var (
		baseURL      string
		apiKey       string
		pollInterval int
		pageSize     int
	)

	rootCmd := &cobra.Command{
		Use:   "ops-console",
		Short: "Operator console for the custodial wallet service",
		Long: `ops-console is a terminal console for wallet operations staff:
browse deposits, withdrawals, transactions, wallets, deposit events and
webhooks, review held withdrawals, and move funds between wallets.`,
		Run: func(cmd *cobra.Command, args []string) {
			if cmd.Flags().Changed("base-url") {
				cfg.BaseURL = baseURL
			}
			if cmd.Flags().Changed("api-key") {
				cfg.APIKey = apiKey
			}
			if cmd.Flags().Changed("poll-interval") {
				cfg.PollInterval = time.Duration(pollInterval) * time.Second
			}
			if cmd.Flags().Changed("page-size") {
				cfg.DefaultPageSize = pageSize
			}

			if err := cfg.Validate(); err != nil {
				logger.Fatal("Invalid configuration: %v", err)
			}

			backend := services.NewBackend(cfg)
			if err := backend.Ping(); err != nil {
				logger.Fatal("Backend unreachable at %s: %v", cfg.BaseURL, err)
			}

			// The TUI owns the terminal from here on.
			if err := logger.InitFileOnly(); err != nil {
				logger.Fatal("Failed to set up file logging: %v", err)
			}
			defer logger.Close()

			console := tui.NewConsole(cfg, backend)
			if err := console.Run(); err != nil {
				logger.Fatal("Console exited with error: %v", err)
			}
		},
	}

	// Add a ping command for scripting health checks
	pingCmd := &cobra.Command{
		Use:   "ping",
		Short: "Check that the wallet service is reachable",
		Run: func(cmd *cobra.Command, args []string) {
			if cmd.Flags().Changed("base-url") {
				cfg.BaseURL = baseURL
			}
			backend := services.NewBackend(cfg)
			if err := backend.Ping(); err != nil {
				logger.Fatal("Backend unreachable at %s: %v", cfg.BaseURL, err)
			}
			fmt.Printf("OK: %s\n", cfg.BaseURL)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&baseURL, "base-url", "u", cfg.BaseURL, "Base URL of the wallet service admin API")
	rootCmd.PersistentFlags().StringVarP(&apiKey, "api-key", "k", "", "API key for the admin API")
	rootCmd.Flags().IntVarP(&pollInterval, "poll-interval", "p", 30, "List poll interval in seconds")
	rootCmd.Flags().IntVarP(&pageSize, "page-size", "s", cfg.DefaultPageSize, "Default rows per page (5, 10, 25, 50 or 100)")

	rootCmd.AddCommand(pingCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Fatal("Failed to execute command: %v", err)
	}
}
