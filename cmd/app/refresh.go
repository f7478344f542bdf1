package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Run one refresh and exit",
	Long:  `Fetches both upstreams, stores the merged records, renders the summary and prints the result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		app, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer app.close(ctx)

		res, err := app.service.Refresh(ctx)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	},
}
