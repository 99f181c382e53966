package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "attendctl",
	Short: "Admin CLI for the face attendance service",
	Long: `attendctl manages the attendance service from the command line:
register users, enroll their faces and export daily reports.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
