package rotator

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Recipient is one entry of the rotation list.
type Recipient struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
}

// TokenConfig holds the Azure AD client-credentials settings.
type TokenConfig struct {
	Endpoint     string `mapstructure:"endpoint"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Resource     string `mapstructure:"resource"`
}

// MailboxConfig identifies the watched mailbox folder.
type MailboxConfig struct {
	User      string `mapstructure:"user"`
	Folder    string `mapstructure:"folder"`
	BatchSize int    `mapstructure:"batch_size"`
}

// AutoReplyConfig controls the optional reply sent to original senders.
type AutoReplyConfig struct {
	Enabled    bool     `mapstructure:"enabled"`
	Subject    string   `mapstructure:"subject"`
	Body       string   `mapstructure:"body"`
	Exclusions []string `mapstructure:"exclusions"`
}

// LogConfig selects the slog destination, level and handler format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Config is the full configuration, loaded once at startup and passed
// explicitly to the components that need it.
type Config struct {
	Token        TokenConfig     `mapstructure:"token"`
	Mailbox      MailboxConfig   `mapstructure:"mailbox"`
	ForwardTo    []Recipient     `mapstructure:"forward_to"`
	AutoReply    AutoReplyConfig `mapstructure:"auto_reply"`
	PollInterval int             `mapstructure:"poll_interval"` // minutes
	MessageDelay time.Duration   `mapstructure:"message_delay"`
	IndexFile    string          `mapstructure:"index_file"`
	Log          LogConfig       `mapstructure:"log"`
}

// SetDefaults registers the default values for all optional settings.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("token.resource", "https://graph.microsoft.com")
	v.SetDefault("mailbox.folder", "Inbox")
	v.SetDefault("mailbox.batch_size", 250)
	v.SetDefault("poll_interval", 5)
	v.SetDefault("message_delay", 250*time.Millisecond)
	v.SetDefault("index_file", "index.dat")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// LoadConfig unmarshals the viper state into a Config and validates the
// settings the rotation loop cannot run without.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Token.Endpoint == "" || cfg.Token.ClientID == "" || cfg.Token.ClientSecret == "" {
		return nil, fmt.Errorf("token endpoint, client_id and client_secret must be configured")
	}
	if cfg.Mailbox.User == "" {
		return nil, fmt.Errorf("mailbox user must be configured")
	}
	if len(cfg.ForwardTo) == 0 {
		return nil, fmt.Errorf("forward_to must contain at least one recipient")
	}
	for i, r := range cfg.ForwardTo {
		if r.Email == "" {
			return nil, fmt.Errorf("forward_to entry %d has no email address", i)
		}
	}
	if cfg.PollInterval < 1 {
		return nil, fmt.Errorf("poll_interval must be at least 1 minute")
	}

	return &cfg, nil
}
