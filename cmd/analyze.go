package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-id/internal/analyze"
	"github.com/kozaktomas/face-id/internal/config"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [image-path]",
	Short: "Estimate age, gender and emotion of a face",
	Long: `Analyze the face in a photo and print the estimated age, gender and
dominant emotion. This is classification only; no identity matching
takes place.`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("provider", "local", "Analysis provider: local, openai, gemini")
	analyzeCmd.Flags().Bool("json", false, "Output result as JSON")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	imagePath := args[0]

	cfg := config.Load()

	ctx := context.Background()
	provider, err := analyze.NewProvider(ctx, mustGetString(cmd, "provider"), cfg)
	if err != nil {
		return err
	}

	imageData, err := os.ReadFile(imagePath)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}

	analysis, err := provider.AnalyzeFace(ctx, imageData)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if mustGetBool(cmd, "json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(analysis)
	}

	fmt.Printf("Provider: %s\n", provider.Name())
	fmt.Printf("Age:      %d\n", analysis.Age)
	fmt.Printf("Gender:   %s (%.2f)\n", analysis.Gender, analysis.GenderConfidence)
	fmt.Printf("Emotion:  %s\n", analysis.Emotion)
	for emotion, score := range analysis.Emotions {
		fmt.Printf("  %-10s %.3f\n", emotion, score)
	}
	return nil
}
