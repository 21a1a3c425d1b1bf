package rotator

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Mailbox is the mail API surface the dispatcher needs. GraphClient is the
// production implementation.
type Mailbox interface {
	ListUnread(ctx context.Context, limit int) ([]Message, error)
	Forward(ctx context.Context, messageID, recipientName, recipientEmail string) error
	MarkRead(ctx context.Context, messageID string) error
	SendReply(ctx context.Context, recipientEmail string) error
}

// Dispatcher forwards unread messages to the recipient list in round-robin
// order. The cursor into the list advances only when a forward succeeds, so
// a failing recipient slot is retried with the next message instead of being
// skipped.
type Dispatcher struct {
	mailbox    Mailbox
	recipients []Recipient
	batchSize  int
	reply      AutoReplyConfig
	delay      time.Duration
}

// NewDispatcher builds a dispatcher over the given mailbox. The recipient
// list must be non-empty.
func NewDispatcher(mailbox Mailbox, cfg *Config) *Dispatcher {
	return &Dispatcher{
		mailbox:    mailbox,
		recipients: cfg.ForwardTo,
		batchSize:  cfg.Mailbox.BatchSize,
		reply:      cfg.AutoReply,
		delay:      cfg.MessageDelay,
	}
}

// Run loads the unread batch and dispatches it, returning the cursor to
// persist. If loading the message list fails the cursor is returned
// unchanged and nothing is processed this cycle.
func (d *Dispatcher) Run(ctx context.Context, cursor int) int {
	messages, err := d.mailbox.ListUnread(ctx, d.batchSize)
	if err != nil {
		slog.Error("Failed to load messages", "error", err)
		return cursor
	}

	return d.Dispatch(ctx, cursor, messages)
}

// Dispatch forwards the given messages in order, starting at cursor, and
// returns the cursor position after the batch. A cursor outside the
// recipient list (the list may have shrunk since it was persisted) is reset
// to the start of the list.
func (d *Dispatcher) Dispatch(ctx context.Context, cursor int, messages []Message) int {
	if cursor < 0 || cursor >= len(d.recipients) {
		cursor = 0
	}

	for i, msg := range messages {
		recipient := d.recipients[cursor]

		slog.Info("Processing message", "recipient", recipient.Email, "subject", msg.Subject)

		if err := d.mailbox.Forward(ctx, msg.ID, recipient.Name, recipient.Email); err != nil {
			// Leave the message unread and the cursor in place; the next
			// message is attempted against the same recipient.
			slog.Error("Failed to forward message", "recipient", recipient.Email, "error", err)
		} else {
			if err := d.mailbox.MarkRead(ctx, msg.ID); err != nil {
				// The message stays unread and may be forwarded again next
				// poll. Accepted: at-least-once beats losing it.
				slog.Error("Failed to mark message as read", "error", err)
			}

			cursor = (cursor + 1) % len(d.recipients)

			d.autoReply(ctx, msg)
		}

		// Throttle API calls between messages.
		if i < len(messages)-1 && !sleep(ctx, d.delay) {
			break
		}
	}

	return cursor
}

// autoReply sends the configured reply to the message sender. Best-effort:
// failures are logged and never affect the forward or the cursor.
func (d *Dispatcher) autoReply(ctx context.Context, msg Message) {
	if !d.reply.Enabled || msg.Sender == "" || d.excluded(msg.Sender) {
		return
	}

	if err := d.mailbox.SendReply(ctx, msg.Sender); err != nil {
		slog.Error("Failed to send auto-reply", "recipient", msg.Sender, "error", err)
	}
}

func (d *Dispatcher) excluded(sender string) bool {
	for _, addr := range d.reply.Exclusions {
		if strings.EqualFold(addr, sender) {
			return true
		}
	}
	return false
}

// sleep waits for the given duration and reports false if the context was
// cancelled first.
func sleep(ctx context.Context, delay time.Duration) bool {
	if delay <= 0 {
		return ctx.Err() == nil
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
