package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	searchConfigFile string

	rootCmd = &cobra.Command{
		Use:   "ragon",
		Short: "RAGON: hybrid vector and graph retrieval",
		Long: `RAGON searches a PostgreSQL/pgvector knowledge store by embedding
similarity and optionally expands the results through typed relationship
edges between chunks and documents.

Database connection parameters are read from DB_* environment variables
(or a local .env file). Search parameters come from an optional config
file with RAGON_ environment variable overrides.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Support both local .env and system envs
			_ = godotenv.Load()
		},
	}
)

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&searchConfigFile, "config", "", "search config file (yaml or json)")
}
