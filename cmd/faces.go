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

var facesCmd = &cobra.Command{
	Use:   "faces [image-path]",
	Short: "List the faces detected in a photo",
	Long: `Detect all faces in a photo and print each detection with its bounding
box and score. Useful for checking why register or identify picked a
particular face in a group photo: the most confident detection wins.`,
	Args: cobra.ExactArgs(1),
	RunE: runFaces,
}

func init() {
	rootCmd.AddCommand(facesCmd)

	facesCmd.Flags().Bool("json", false, "Output detections as JSON")
}

func runFaces(cmd *cobra.Command, args []string) error {
	imagePath := args[0]

	cfg := config.Load()
	jsonOutput := mustGetBool(cmd, "json")

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	client := faceserver.NewClient(cfg.FaceServer.URL)
	detections, err := client.DetectFaces(context.Background(), imageData)
	if err != nil {
		return fmt.Errorf("face detection failed: %w", err)
	}

	if jsonOutput {
		return json.NewEncoder(os.Stdout).Encode(map[string]any{
			"faces_count": len(detections),
			"faces":       detections,
		})
	}

	if len(detections) == 0 {
		fmt.Println("No faces detected")
		return nil
	}

	fmt.Printf("Detected %d face(s):\n", len(detections))
	for _, det := range detections {
		fmt.Printf("  face %d: score %.3f, dim %d", det.FaceIndex, det.DetScore, det.Dim)
		if len(det.BBox) == 4 {
			fmt.Printf(", bbox [%.0f %.0f %.0f %.0f]", det.BBox[0], det.BBox[1], det.BBox[2], det.BBox[3])
		}
		fmt.Println()
	}
	return nil
}
