package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/agencyops/seo-intel/internal/config"
	"github.com/agencyops/seo-intel/internal/database"
	"github.com/agencyops/seo-intel/internal/queue"
	"github.com/spf13/cobra"
)

// NewDigestCmd creates the digest command group
func NewDigestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Inspect and trigger digest runs",
	}

	cmd.AddCommand(newDigestListCmd())
	cmd.AddCommand(newDigestRunCmd())

	return cmd
}

func newDigestListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent digests",
		RunE: func(cmd *cobra.Command, args []string) error {
			db, closeDB, err := connectDB()
			if err != nil {
				return err
			}
			defer closeDB()

			digestRepo := database.NewDigestRepository(db)
			digests, err := digestRepo.List(context.Background(), limit)
			if err != nil {
				return fmt.Errorf("failed to list digests: %w", err)
			}

			if len(digests) == 0 {
				fmt.Println("No digests yet")
				return nil
			}

			for _, d := range digests {
				fmt.Printf("  - %s  %s  [%s]\n", d.Period, d.ID, d.Status)
				fmt.Printf("    fetched=%d recommendations=%d task_drafts=%d sop_drafts=%d\n",
					d.SourcesFetched, d.RecommendationsGenerated, d.TaskDraftsCreated, d.SopDraftsCreated)
				if d.ErrorMessage != nil {
					fmt.Printf("    error: %s\n", *d.ErrorMessage)
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Number of digests to show")
	return cmd
}

func newDigestRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Enqueue a digest run for the worker to pick up",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			jobQueue, err := queue.NewRabbitMQQueue(cfg.RabbitMQURL)
			if err != nil {
				return fmt.Errorf("failed to connect to RabbitMQ: %w", err)
			}
			defer func() {
				if err := jobQueue.Close(); err != nil {
					fmt.Fprintf(os.Stderr, "Warning: failed to close RabbitMQ connection: %v\n", err)
				}
			}()

			job := queue.NewJob(queue.JobTypeDigestRun)
			if err := jobQueue.Enqueue(context.Background(), job); err != nil {
				return fmt.Errorf("failed to enqueue digest run: %w", err)
			}

			fmt.Printf("Enqueued digest run job %s\n", job.ID)
			fmt.Println("The worker enforces one run per period; a duplicate trigger is a no-op.")
			return nil
		},
	}
}
