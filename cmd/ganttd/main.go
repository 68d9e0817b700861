package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/beckyeh8888/free-crm-sub001/internal/cli"
)

var rootCmd = &cobra.Command{Use: "ganttd"}

func main() {
	rootCmd.PersistentFlags().String("db", "", "Database connection string")
	cli.SetupCLI(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
