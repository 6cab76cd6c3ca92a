package main

import (
	"context"
	"encoding/json"
	"errors"
	"os/signal"
	"syscall"

	"shop_chat_server/internal/infrastructure/mq"

	"github.com/spf13/cobra"
)

func newEventsCmd(configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "聊天事件流工具",
	}
	cmd.AddCommand(newEventsTailCmd(configPath))
	return cmd
}

func newEventsTailCmd(configPath *string) *cobra.Command {
	var groupID string

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "持续打印 Kafka 中的聊天事件",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			if cfg.KafkaConfig.MessageMode != "kafka" {
				return errors.New("kafkaConfig.messageMode is not kafka, no events to tail")
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			enc := json.NewEncoder(cmd.OutOrStdout())
			return mq.Consume(ctx, &cfg.KafkaConfig, groupID, func(event mq.Event) error {
				return enc.Encode(event)
			})
		},
	}

	cmd.Flags().StringVarP(&groupID, "group", "g", "shop_chat_tail", "Kafka 消费组")
	return cmd
}
