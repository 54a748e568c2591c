package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Register migrations and seeders with their runners.
	_ "github.com/shashiranjanraj/meatshop/database/migrations"
	_ "github.com/shashiranjanraj/meatshop/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "meatshop",
	Short:         "Meat delivery storefront",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)

	// Store
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(ordersTrackCmd)
	rootCmd.AddCommand(ordersAdvanceCmd)

	// Workers
	rootCmd.AddCommand(queueWorkCmd)
}
