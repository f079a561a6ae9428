package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/kozaktomas/face-service/internal/config"
	"github.com/kozaktomas/face-service/internal/extract"
	"github.com/kozaktomas/face-service/internal/service"
	"github.com/spf13/cobra"
)

var recognizeCmd = &cobra.Command{
	Use:   "recognize <image>",
	Short: "Recognize the worker on an image",
	Long: `Match a single photo against the enrolled faces and report the
best matching worker, if any.`,
	Args: cobra.ExactArgs(1),
	RunE: runRecognize,
}

func init() {
	rootCmd.AddCommand(recognizeCmd)

	recognizeCmd.Flags().Float64("threshold", 0, "Match threshold override (0 = use configuration)")
}

func runRecognize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if threshold := mustGetFloat64(cmd, "threshold"); threshold != 0 {
		cfg.Face.MatchThreshold = threshold
	}

	svc, err := service.Open(cfg, extract.NewClient(cfg.Extractor.URL))
	if err != nil {
		return err
	}

	imageData, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	result, err := svc.Recognize(context.Background(), imageData)
	if err != nil {
		return err
	}

	if !result.Recognized {
		fmt.Printf("No match (best confidence %.4f, threshold %.2f)\n",
			result.Confidence, result.Threshold)
		return nil
	}

	fmt.Printf("Worker %d recognized (confidence %.4f)\n", result.WorkerID, result.Confidence)
	if result.Metadata != nil {
		fmt.Printf("  Enrolled faces: %d\n", result.Metadata.TotalFaces)
		fmt.Printf("  First enrolled: %s\n", result.Metadata.FirstEnrolled.Format("2006-01-02 15:04:05"))
	}
	return nil
}
