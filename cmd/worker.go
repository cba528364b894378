/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/cliptube/apiserver/config"
	"github.com/cliptube/apiserver/internal/mq"
	"github.com/cliptube/apiserver/internal/services"
	"github.com/spf13/cobra"
)

// workerCmd represents the worker command
var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consumes account events from the configured broker",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.LoadConfig()

		broker, err := mq.NewFromConfig(cmd.Context(), cfg.MQ)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to connect broker: %v\n", err)
			os.Exit(1)
		}
		if broker == nil {
			fmt.Fprintln(os.Stderr, "MQ_BACKEND is required for the worker")
			os.Exit(1)
		}
		defer broker.Close()

		err = broker.Subscribe(cmd.Context(), cfg.MQ.Channel, func(ctx context.Context, msg mq.Message) error {
			var event services.AccountEvent
			if err := json.Unmarshal(msg.Data, &event); err != nil {
				log.Printf("dropping undecodable message %s: %v", msg.ID, err)
				return nil
			}
			log.Printf("account event %s: user=%d username=%s at=%s", event.Type, event.UserID, event.Username, event.At)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			fmt.Fprintf(os.Stderr, "worker error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}
