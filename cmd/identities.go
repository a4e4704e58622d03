package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/identity"
)

var identitiesCmd = &cobra.Command{
	Use:   "identities",
	Short: "List registered identities",
	RunE:  runIdentities,
}

var identitiesDeleteCmd = &cobra.Command{
	Use:   "delete [label]",
	Short: "Delete a registered identity",
	Args:  cobra.ExactArgs(1),
	RunE:  runIdentitiesDelete,
}

func init() {
	rootCmd.AddCommand(identitiesCmd)
	identitiesCmd.AddCommand(identitiesDeleteCmd)

	identitiesCmd.Flags().StringP("query", "q", "", "Filter labels by normalized substring match")
}

func runIdentities(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	store, _, pool, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	q := identity.NormalizeLabel(mustGetString(cmd, "query"))

	var shown int
	for _, rec := range store.Records() {
		if q != "" && !strings.Contains(identity.NormalizeLabel(rec.Label), q) {
			continue
		}
		fmt.Printf("%-36s  %-30s  %s\n", rec.UID, rec.Label, rec.CreatedAt.Format("2006-01-02 15:04:05"))
		shown++
	}

	fmt.Printf("\n%d identities\n", shown)
	return nil
}

func runIdentitiesDelete(cmd *cobra.Command, args []string) error {
	label := args[0]

	cfg := config.Load()

	store, repo, pool, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	if !store.Remove(label) {
		return fmt.Errorf("identity %q not found", label)
	}
	if _, err := repo.DeleteIdentity(cmd.Context(), strings.TrimSpace(label)); err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}

	fmt.Printf("Deleted %q\n", label)
	return nil
}
