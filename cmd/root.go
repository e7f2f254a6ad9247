package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "order-sync",
	Short: "Order synchronization microservice",
	Long:  "A microservice that ingests payment gateway webhooks and reconciles transaction, delivery, and refund state for local orders.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
