package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/meatshop/config"
	"github.com/shashiranjanraj/meatshop/internal/server"
)

var queueWorkersFlag int

// meatshop queue:work
var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process notification jobs from the shared queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.QueueDriver() != "redis" {
			return errors.New("queue:work needs QUEUE_DRIVER=redis; the memory queue is drained by serve")
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := server.Boot(ctx)
		if err != nil {
			return err
		}
		defer app.Close()

		workers := queueWorkersFlag
		if workers < 1 {
			workers = 1
		}
		fmt.Printf("Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		app.Queue.Start(ctx, workers)

		<-ctx.Done()
		app.Queue.Wait()
		fmt.Println("Queue worker stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 2, "Number of concurrent workers")
}
