// Package cmd implements the faceid command line interface.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "faceid",
	Short: "A face identity matching engine",
	Long: `Face ID registers known people by their face embeddings and identifies
who appears in a new photo by nearest-neighbor search over the registered
gallery. Embeddings are computed by an external face model server; matching
runs entirely in this process.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}
