package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var fetchForce bool

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download the recipe dataset",
	Long: `Downloads the recipe dataset to its configured location so the
first search does not have to. With --force an existing copy is
replaced.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchForce, "force", false, "replace an existing dataset")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, _ []string) error {
	a, err := buildApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.source.Ready() {
		if !fetchForce {
			cmd.Printf("Dataset already present at %s (use --force to replace)\n", a.cfg.Dataset.Path)
			return nil
		}
		if err := os.Remove(a.cfg.Dataset.Path); err != nil {
			return fmt.Errorf("removing old dataset: %w", err)
		}
	}

	cmd.Println("Downloading dataset...")
	if err := a.source.Ensure(context.Background()); err != nil {
		return err
	}
	cmd.Printf("Dataset saved to %s\n", a.cfg.Dataset.Path)
	return nil
}
