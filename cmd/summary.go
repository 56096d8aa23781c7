package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	queryFlag string

	summaryCmd = &cobra.Command{
		Use:   "summary <part>",
		Short: "Print the feature history digest for a part",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := backendFromConfig()
			if err != nil {
				return err
			}

			pm, err := backend.Open(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			summary, err := pm.BuildSummary(cmd.Context(), queryFlag)
			if err != nil {
				return err
			}

			fmt.Println(summary)
			return nil
		},
	}
)

func init() {
	rootCmd.AddCommand(summaryCmd)

	summaryCmd.Flags().StringVarP(&queryFlag, "query", "q", "", "Bias the digest toward events relevant to this query")
	summaryCmd.Flags().BoolVar(&localFlag, "local", false, "Run with the in-process index and mock embedder")
}
