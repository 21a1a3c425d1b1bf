package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mhenniges/mail-rotator/internal/rotator"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the mailbox once and forward unread messages",
	Run: func(cmd *cobra.Command, args []string) {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := rotator.RunOnce(ctx); err != nil {
			fmt.Printf("Check failed: %v\n", err)
		}
	},
}
