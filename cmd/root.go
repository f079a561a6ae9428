package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "face-service",
	Short: "A face recognition service for worker identification",
	Long: `Face Service keeps a store of worker face embeddings and matches
incoming photos against it. Face detection and embedding extraction are
delegated to an external extraction server; this tool manages the store,
serves the HTTP API and offers enrollment and recognition from the CLI.`,
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
