package rotator

import (
	"context"
	"errors"
	"testing"
)

// fakeMailbox records calls and fails on demand.
type fakeMailbox struct {
	messages []Message
	listErr  error
	forward  error
	markRead error
	reply    error

	forwards  []string // recipient email per forward attempt
	marks     []string // message id per mark-read call
	replies   []string // recipient email per auto-reply
	listCalls int
}

func (f *fakeMailbox) ListUnread(_ context.Context, _ int) ([]Message, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.messages, nil
}

func (f *fakeMailbox) Forward(_ context.Context, _, _, recipientEmail string) error {
	f.forwards = append(f.forwards, recipientEmail)
	return f.forward
}

func (f *fakeMailbox) MarkRead(_ context.Context, messageID string) error {
	f.marks = append(f.marks, messageID)
	return f.markRead
}

func (f *fakeMailbox) SendReply(_ context.Context, recipientEmail string) error {
	f.replies = append(f.replies, recipientEmail)
	return f.reply
}

func testMessages() []Message {
	return []Message{
		{ID: "1", Subject: "What's the matter? Ya scared?!", Sender: "roberto@planetexpress.com"},
		{ID: "2", Subject: "What if... That thing I said", Sender: "fry@planetexpress.com"},
		{ID: "3", Subject: "Good news everyone!", Sender: "professor@planetexpress.com"},
	}
}

func testConfig() *Config {
	return &Config{
		ForwardTo: []Recipient{
			{Name: "Bender", Email: "bender@planetexpress.com"},
			{Name: "Zoidberg", Email: "zoidberg@planetexpress.com"},
		},
		AutoReply: AutoReplyConfig{
			Enabled: true,
			Subject: "Your message has been received.",
		},
		Mailbox: MailboxConfig{BatchSize: 250},
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestDispatch_RoundRobin(t *testing.T) {
	t.Parallel()

	mailbox := &fakeMailbox{messages: testMessages()}
	dispatcher := NewDispatcher(mailbox, testConfig())

	cursor := dispatcher.Run(context.Background(), 0)

	if cursor != 1 {
		t.Errorf("expected final cursor 1, got %d", cursor)
	}

	wantForwards := []string{
		"bender@planetexpress.com",
		"zoidberg@planetexpress.com",
		"bender@planetexpress.com",
	}
	if !equal(mailbox.forwards, wantForwards) {
		t.Errorf("unexpected forwards: %v", mailbox.forwards)
	}

	if !equal(mailbox.marks, []string{"1", "2", "3"}) {
		t.Errorf("unexpected mark-read calls: %v", mailbox.marks)
	}

	wantReplies := []string{
		"roberto@planetexpress.com",
		"fry@planetexpress.com",
		"professor@planetexpress.com",
	}
	if !equal(mailbox.replies, wantReplies) {
		t.Errorf("unexpected auto-replies: %v", mailbox.replies)
	}
}

func TestRun_ListError(t *testing.T) {
	t.Parallel()

	mailbox := &fakeMailbox{listErr: errors.New("we're boned")}
	dispatcher := NewDispatcher(mailbox, testConfig())

	cursor := dispatcher.Run(context.Background(), 1)

	if cursor != 1 {
		t.Errorf("expected cursor unchanged at 1, got %d", cursor)
	}
	if len(mailbox.forwards) != 0 || len(mailbox.marks) != 0 {
		t.Errorf("expected no forwards or mark-read calls, got %v / %v", mailbox.forwards, mailbox.marks)
	}
}

func TestDispatch_ForwardError(t *testing.T) {
	t.Parallel()

	mailbox := &fakeMailbox{messages: testMessages(), forward: errors.New("we're boned")}
	dispatcher := NewDispatcher(mailbox, testConfig())

	cursor := dispatcher.Run(context.Background(), 0)

	if cursor != 0 {
		t.Errorf("expected cursor to stay at 0, got %d", cursor)
	}

	// Every message retried against the same recipient.
	wantForwards := []string{
		"bender@planetexpress.com",
		"bender@planetexpress.com",
		"bender@planetexpress.com",
	}
	if !equal(mailbox.forwards, wantForwards) {
		t.Errorf("unexpected forwards: %v", mailbox.forwards)
	}

	if len(mailbox.marks) != 0 {
		t.Errorf("expected no mark-read calls, got %v", mailbox.marks)
	}
	if len(mailbox.replies) != 0 {
		t.Errorf("expected no auto-replies, got %v", mailbox.replies)
	}
}

func TestDispatch_MarkReadErrorStillAdvances(t *testing.T) {
	t.Parallel()

	mailbox := &fakeMailbox{messages: testMessages(), markRead: errors.New("we're boned")}
	dispatcher := NewDispatcher(mailbox, testConfig())

	cursor := dispatcher.Run(context.Background(), 0)

	// Mark-read is best-effort: the cursor advances and replies go out.
	if cursor != 1 {
		t.Errorf("expected final cursor 1, got %d", cursor)
	}
	if len(mailbox.replies) != 3 {
		t.Errorf("expected 3 auto-replies, got %v", mailbox.replies)
	}
}

func TestDispatch_AutoReplyDisabled(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.AutoReply.Enabled = false

	mailbox := &fakeMailbox{messages: testMessages()}
	dispatcher := NewDispatcher(mailbox, cfg)

	cursor := dispatcher.Run(context.Background(), 0)

	if cursor != 1 {
		t.Errorf("expected final cursor 1, got %d", cursor)
	}
	if len(mailbox.marks) != 3 {
		t.Errorf("expected 3 mark-read calls, got %v", mailbox.marks)
	}
	if len(mailbox.replies) != 0 {
		t.Errorf("expected no auto-replies, got %v", mailbox.replies)
	}
}

func TestDispatch_AutoReplyExclusions(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.AutoReply.Exclusions = []string{"Fry@PlanetExpress.com"}

	mailbox := &fakeMailbox{messages: testMessages()}
	dispatcher := NewDispatcher(mailbox, cfg)

	cursor := dispatcher.Run(context.Background(), 0)

	if cursor != 1 {
		t.Errorf("expected final cursor 1, got %d", cursor)
	}

	// Exclusion matching ignores case; fry is skipped.
	wantReplies := []string{
		"roberto@planetexpress.com",
		"professor@planetexpress.com",
	}
	if !equal(mailbox.replies, wantReplies) {
		t.Errorf("unexpected auto-replies: %v", mailbox.replies)
	}
}

func TestDispatch_AutoReplyNoSender(t *testing.T) {
	t.Parallel()

	mailbox := &fakeMailbox{messages: []Message{{ID: "1", Subject: "no from header"}}}
	dispatcher := NewDispatcher(mailbox, testConfig())

	cursor := dispatcher.Run(context.Background(), 0)

	if cursor != 1 {
		t.Errorf("expected final cursor 1, got %d", cursor)
	}
	if len(mailbox.replies) != 0 {
		t.Errorf("expected no auto-replies, got %v", mailbox.replies)
	}
}

func TestDispatch_ReplyErrorIgnored(t *testing.T) {
	t.Parallel()

	mailbox := &fakeMailbox{messages: testMessages(), reply: errors.New("we're boned")}
	dispatcher := NewDispatcher(mailbox, testConfig())

	cursor := dispatcher.Run(context.Background(), 0)

	if cursor != 1 {
		t.Errorf("expected final cursor 1, got %d", cursor)
	}
	if len(mailbox.marks) != 3 {
		t.Errorf("expected 3 mark-read calls, got %v", mailbox.marks)
	}
}

func TestDispatch_EmptyBatch(t *testing.T) {
	t.Parallel()

	mailbox := &fakeMailbox{}
	dispatcher := NewDispatcher(mailbox, testConfig())

	cursor := dispatcher.Run(context.Background(), 1)

	if cursor != 1 {
		t.Errorf("expected cursor unchanged at 1, got %d", cursor)
	}
	if len(mailbox.forwards) != 0 {
		t.Errorf("expected no forwards, got %v", mailbox.forwards)
	}
}

func TestDispatch_CursorOutOfRange(t *testing.T) {
	t.Parallel()

	mailbox := &fakeMailbox{messages: testMessages()[:1]}
	dispatcher := NewDispatcher(mailbox, testConfig())

	// A stale cursor from a longer recipient list starts over at 0.
	cursor := dispatcher.Run(context.Background(), 7)

	if cursor != 1 {
		t.Errorf("expected final cursor 1, got %d", cursor)
	}
	if !equal(mailbox.forwards, []string{"bender@planetexpress.com"}) {
		t.Errorf("unexpected forwards: %v", mailbox.forwards)
	}
}

func TestDispatch_WrapsAroundList(t *testing.T) {
	t.Parallel()

	mailbox := &fakeMailbox{messages: testMessages()}
	dispatcher := NewDispatcher(mailbox, testConfig())

	cursor := dispatcher.Dispatch(context.Background(), 1, mailbox.messages)

	if cursor != 0 {
		t.Errorf("expected final cursor 0, got %d", cursor)
	}

	wantForwards := []string{
		"zoidberg@planetexpress.com",
		"bender@planetexpress.com",
		"zoidberg@planetexpress.com",
	}
	if !equal(mailbox.forwards, wantForwards) {
		t.Errorf("unexpected forwards: %v", mailbox.forwards)
	}
}
