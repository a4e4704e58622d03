package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/faceserver"
)

var identifyCmd = &cobra.Command{
	Use:   "identify [image-path]",
	Short: "Identify the person in a photo",
	Long: `Identify who appears in a photo by comparing its face embedding against
all registered identities. Prints the best match when its distance falls
below the threshold, or "no match" otherwise.`,
	Args: cobra.ExactArgs(1),
	RunE: runIdentify,
}

func init() {
	rootCmd.AddCommand(identifyCmd)

	identifyCmd.Flags().Float64("threshold", 0, "Match threshold (0 = use the model's calibrated value)")
	identifyCmd.Flags().Bool("json", false, "Output result as JSON")
}

func runIdentify(cmd *cobra.Command, args []string) error {
	imagePath := args[0]

	cfg := config.Load()

	threshold := mustGetFloat64(cmd, "threshold")
	if threshold == 0 {
		threshold = cfg.Matching.Threshold
	}
	jsonOutput := mustGetBool(cmd, "json")

	store, _, pool, err := openStore(cfg)
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

	match, err := store.Identify(embedding, threshold)
	if err != nil {
		return fmt.Errorf("identification failed: %w", err)
	}

	if jsonOutput {
		out := map[string]any{"matched": match.Matched}
		if match.Matched {
			out["uid"] = match.UID
			out["label"] = match.Label
			out["distance"] = match.Distance
			out["confidence"] = match.Confidence
		} else {
			out["reason"] = "no-match"
		}
		return json.NewEncoder(os.Stdout).Encode(out)
	}

	if !match.Matched {
		fmt.Printf("No match among %d registered identities (threshold %g)\n", store.Count(), threshold)
		return nil
	}

	fmt.Printf("Match: %s (distance %.4f, confidence %.2f)\n", match.Label, match.Distance, match.Confidence)
	return nil
}
