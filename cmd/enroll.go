package cmd

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/kozaktomas/face-service/internal/config"
	"github.com/kozaktomas/face-service/internal/extract"
	"github.com/kozaktomas/face-service/internal/service"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var enrollCmd = &cobra.Command{
	Use:   "enroll <worker-id> <image>...",
	Short: "Enroll face images for a worker",
	Long: `Enroll one or more face images for a worker directly into the face store.
Each image must contain exactly one face. Images that fail extraction are
reported and skipped; the rest are enrolled.

Examples:
  # Enroll a single photo
  face-service enroll 42 badge.jpg

  # Enroll a directory worth of photos (3 concurrent extractions)
  face-service enroll 42 photos/*.jpg --concurrency 3`,
	Args: cobra.MinimumNArgs(2),
	RunE: runEnroll,
}

func init() {
	rootCmd.AddCommand(enrollCmd)

	enrollCmd.Flags().Int("concurrency", 3, "Number of parallel extraction requests")
}

func runEnroll(cmd *cobra.Command, args []string) error {
	workerID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || workerID <= 0 {
		return fmt.Errorf("invalid worker id %q", args[0])
	}
	paths := args[1:]
	concurrency := mustGetInt(cmd, "concurrency")

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	svc, err := service.Open(cfg, extract.NewClient(cfg.Extractor.URL))
	if err != nil {
		return err
	}

	ctx := context.Background()

	if len(paths) == 1 {
		imageData, err := os.ReadFile(paths[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", paths[0], err)
		}
		result, err := svc.Enroll(ctx, workerID, imageData)
		if err != nil {
			return err
		}
		fmt.Printf("Enrolled face %d for worker %d (%d faces total in system)\n",
			result.FaceIndex, result.WorkerID, result.TotalFacesInSystem)
		if result.PersistWarning != "" {
			fmt.Printf("Warning: %s\n", result.PersistWarning)
		}
		return nil
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Enrolling faces"),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionFullWidth(),
	)

	var successCount, errorCount int
	var failures []string
	var mu sync.Mutex

	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for _, path := range paths {
		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			imageData, err := os.ReadFile(path)
			if err == nil {
				_, err = svc.Enroll(ctx, workerID, imageData)
			}

			mu.Lock()
			if err != nil {
				errorCount++
				failures = append(failures, fmt.Sprintf("%s: %v", path, err))
			} else {
				successCount++
			}
			mu.Unlock()
			bar.Add(1)
		}(path)
	}

	wg.Wait()
	fmt.Println()

	fmt.Printf("\nCompleted: %d images enrolled, %d errors\n", successCount, errorCount)
	for _, failure := range failures {
		fmt.Printf("  %s\n", failure)
	}
	if err := svc.Flush(); err != nil {
		fmt.Printf("Warning: final store flush failed: %v\n", err)
	}

	status := svc.Status()
	fmt.Printf("Faces in store: %d (across %d workers)\n",
		status.Stats.TotalFaces, status.Stats.UniqueWorkers)
	return nil
}
