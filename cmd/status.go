package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show face store statistics",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	svc, err := openLocalService()
	if err != nil {
		return err
	}

	status := svc.Status()
	fmt.Printf("Store file:        %s\n", status.StoreFile)
	fmt.Printf("Total faces:       %d\n", status.Stats.TotalFaces)
	fmt.Printf("Unique workers:    %d\n", status.Stats.UniqueWorkers)
	fmt.Printf("Faces per worker:  %.2f average (max %d)\n",
		status.Stats.AverageFacesPerWorker, status.MaxFacesPerWorker)
	if status.Stats.TopWorkerID > 0 {
		fmt.Printf("Most enrolled:     worker %d (%d faces)\n",
			status.Stats.TopWorkerID, status.Stats.TopWorkerFaces)
	}
	fmt.Printf("Match threshold:   %.2f\n", status.Threshold)
	return nil
}
