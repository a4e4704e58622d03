package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/kozaktomas/face-id/internal/config"
	"github.com/kozaktomas/face-id/internal/faceserver"
	"github.com/kozaktomas/face-id/internal/identity"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll [directory]",
	Short: "Bulk-register identities from a directory of photos",
	Long: `Enroll every photo in a directory as a registered identity. The label
is the file name without its extension, so "jan-novak.jpg" registers
"jan-novak". Photos whose label is already registered are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().Int("concurrency", 5, "Number of parallel embedding requests")
}

// isImageFile reports whether the file extension is a supported image format.
func isImageFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return true
	}
	return false
}

// collectEnrollTargets lists the image files in dir whose labels are not
// registered yet.
func collectEnrollTargets(dir string, store *identity.Store) ([]string, int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read directory: %w", err)
	}

	var targets []string
	var skipped int
	for _, e := range entries {
		if e.IsDir() || !isImageFile(e.Name()) {
			continue
		}
		label := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if _, exists := store.Get(label); exists {
			skipped++
			continue
		}
		targets = append(targets, filepath.Join(dir, e.Name()))
	}
	return targets, skipped, nil
}

func runEnroll(cmd *cobra.Command, args []string) error {
	dir := args[0]
	concurrency := mustGetInt(cmd, "concurrency")

	cfg := config.Load()

	store, repo, pool, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	targets, skipped, err := collectEnrollTargets(dir, store)
	if err != nil {
		return err
	}
	if skipped > 0 {
		fmt.Printf("Skipping %d already registered identities\n", skipped)
	}
	if len(targets) == 0 {
		fmt.Println("Nothing to enroll")
		return nil
	}

	bar := progressbar.NewOptions(len(targets),
		progressbar.OptionSetDescription("Enrolling faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("photos"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	client := faceserver.NewClient(cfg.FaceServer.URL)
	ctx := context.Background()

	// Embedding extraction is the slow part and runs in parallel; the store
	// and database writes are serialized behind a mutex.
	var successCount, errorCount int
	var errs []string
	var mu sync.Mutex

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, path := range targets {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			defer bar.Add(1)

			label := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

			fail := func(err error) {
				mu.Lock()
				errorCount++
				errs = append(errs, fmt.Sprintf("%s: %v", label, err))
				mu.Unlock()
			}

			imageData, err := os.ReadFile(path)
			if err != nil {
				fail(err)
				return
			}

			embedding, err := client.ExtractEmbedding(ctx, imageData)
			if err != nil {
				fail(err)
				return
			}

			mu.Lock()
			defer mu.Unlock()

			if _, err := store.Register(label, embedding); err != nil {
				errorCount++
				errs = append(errs, fmt.Sprintf("%s: %v", label, err))
				return
			}
			rec, _ := store.Get(label)
			if err := repo.SaveIdentity(ctx, rec); err != nil {
				store.Remove(label)
				errorCount++
				errs = append(errs, fmt.Sprintf("%s: %v", label, err))
				return
			}
			successCount++
		}(path)
	}

	wg.Wait()
	fmt.Println()

	fmt.Printf("Enrolled %d identities (%d failed, %d total registered)\n", successCount, errorCount, store.Count())
	for _, e := range errs {
		fmt.Printf("  %s\n", e)
	}
	return nil
}
