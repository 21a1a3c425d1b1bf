package rotator

import (
	"context"
	"log/slog"
	"time"
)

// Serve runs the polling loop until the context is cancelled or token
// acquisition fails. Each cycle renews the access token when due, loads the
// persisted rotation cursor, dispatches the unread batch and stores the
// cursor back.
func Serve(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	tokens := NewTokenManager(cfg.Token)
	client := NewGraphClient(cfg.Mailbox, cfg.AutoReply)
	store := NewIndexStore(cfg.IndexFile)
	dispatcher := NewDispatcher(client, cfg)

	interval := time.Duration(cfg.PollInterval) * time.Minute

	var renewAt time.Time

	for {
		if !time.Now().Before(renewAt) {
			slog.Info("Renewing access token")

			token, next, err := tokens.Acquire(ctx)
			if err != nil {
				// Without a valid token every API call fails; give up.
				return err
			}

			client.SetToken(token)
			renewAt = next
		}

		slog.Info("Checking messages")

		start := store.Load()
		stop := dispatcher.Run(ctx, start)
		store.Store(stop)

		select {
		case <-ctx.Done():
			slog.Info("Shutting down")
			return nil
		case <-time.After(interval):
		}
	}
}

// RunOnce performs a single poll cycle: acquire a token, dispatch the
// current unread batch, persist the cursor.
func RunOnce(ctx context.Context) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	tokens := NewTokenManager(cfg.Token)
	client := NewGraphClient(cfg.Mailbox, cfg.AutoReply)
	store := NewIndexStore(cfg.IndexFile)
	dispatcher := NewDispatcher(client, cfg)

	token, _, err := tokens.Acquire(ctx)
	if err != nil {
		return err
	}
	client.SetToken(token)

	start := store.Load()
	stop := dispatcher.Run(ctx, start)
	store.Store(stop)

	return nil
}
