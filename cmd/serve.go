// cmd/serve.go
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mhenniges/mail-rotator/internal/rotator"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Continuously poll the mailbox and forward unread messages",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !viper.InConfig("token") || !viper.InConfig("mailbox") {
			return fmt.Errorf(`configuration missing or incomplete.

Create a config.yaml file by running:
  mail-rotator init

The configuration file should be in your current directory and contain:
- Token settings (Azure AD endpoint, client id and secret)
- Mailbox settings (which user and folder to watch)
- Recipients list (who receives forwarded messages, in rotation)`)
		}

		slog.Info("Starting serve mode (polling mailbox)")
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return rotator.Serve(ctx)
	},
}
