package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/faceserver"
	"github.com/kozaktomas/face-id/internal/identity"
)

var registerCmd = &cobra.Command{
	Use:   "register [label] [image-path]",
	Short: "Register a person from a photo",
	Long: `Register a new identity. The image is sent to the face model server,
the embedding of the most confident face is extracted and stored under
the given label. Requires DATABASE_URL for persistence.`,
	Args: cobra.ExactArgs(2),
	RunE: runRegister,
}

func init() {
	rootCmd.AddCommand(registerCmd)
}

func runRegister(cmd *cobra.Command, args []string) error {
	label, imagePath := args[0], args[1]

	cfg := config.Load()

	store, repo, pool, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	client := faceserver.NewClient(cfg.FaceServer.URL)
	embedding, err := client.ExtractEmbedding(context.Background(), imageData)
	if err != nil {
		return fmt.Errorf("failed to extract embedding: %w", err)
	}

	count, err := store.Register(label, embedding)
	if err != nil {
		return fmt.Errorf("failed to register: %w", err)
	}

	rec, _ := store.Get(label)
	if err := repo.SaveIdentity(context.Background(), rec); err != nil {
		// Another writer may own the label even though this process's
		// store did not see it.
		if identity.IsDuplicate(err) {
			return fmt.Errorf("already registered: %w", err)
		}
		return fmt.Errorf("failed to persist identity: %w", err)
	}

	fmt.Printf("Registered %q (%d identities total)\n", rec.Label, count)
	return nil
}
