package main

import (
	"fmt"
	"os"

	"github.com/AbdulWasayUl/go-country-currency/internal/logger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:   "country-currency",
	Short: "Country and exchange rate cache",
	Long: `Fetches country data and USD exchange rates, stores the merged records
in MongoDB and serves them over HTTP together with a summary image.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding the .env file")
	rootCmd.AddCommand(serveCmd, refreshCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		l, logErr := logger.New(logger.Config{Level: "debug", Format: "console"})
		if logErr != nil {
			fmt.Fprintln(os.Stderr, err)
		} else {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		}
		os.Exit(1)
	}
}
