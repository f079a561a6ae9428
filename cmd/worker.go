package cmd

import (
	"fmt"
	"strconv"

	"github.com/kozaktomas/face-service/internal/config"
	"github.com/kozaktomas/face-service/internal/extract"
	"github.com/kozaktomas/face-service/internal/service"
	"github.com/spf13/cobra"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Inspect and manage enrolled workers",
}

var workerFacesCmd = &cobra.Command{
	Use:   "faces <worker-id>",
	Short: "List the enrolled faces of a worker",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkerFaces,
}

var workerDeleteCmd = &cobra.Command{
	Use:   "delete <worker-id>",
	Short: "Delete all enrolled faces of a worker",
	Args:  cobra.ExactArgs(1),
	RunE:  runWorkerDelete,
}

func init() {
	rootCmd.AddCommand(workerCmd)
	workerCmd.AddCommand(workerFacesCmd)
	workerCmd.AddCommand(workerDeleteCmd)
}

// openLocalService loads the store for commands that do not need extraction.
func openLocalService() (*service.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return service.Open(cfg, extract.NewClient(cfg.Extractor.URL))
}

func parseWorkerIDArg(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid worker id %q", arg)
	}
	return id, nil
}

func runWorkerFaces(cmd *cobra.Command, args []string) error {
	workerID, err := parseWorkerIDArg(args[0])
	if err != nil {
		return err
	}

	svc, err := openLocalService()
	if err != nil {
		return err
	}

	result, err := svc.WorkerFaces(workerID)
	if err != nil {
		return err
	}

	fmt.Printf("Worker %d: %d enrolled faces\n", result.WorkerID, result.FaceCount)
	fmt.Printf("  Index positions: %v\n", result.Positions)
	if result.Metadata != nil {
		fmt.Printf("  First enrolled: %s\n", result.Metadata.FirstEnrolled.Format("2006-01-02 15:04:05"))
		fmt.Printf("  Last enrolled:  %s\n", result.Metadata.LastEnrolled.Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runWorkerDelete(cmd *cobra.Command, args []string) error {
	workerID, err := parseWorkerIDArg(args[0])
	if err != nil {
		return err
	}

	svc, err := openLocalService()
	if err != nil {
		return err
	}

	result, err := svc.DeleteWorkerFaces(workerID)
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %d faces for worker %d\n", result.FacesDeleted, result.WorkerID)
	if result.PersistWarning != "" {
		fmt.Printf("Warning: %s\n", result.PersistWarning)
	}
	return nil
}
