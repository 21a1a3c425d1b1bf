package rotator

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// renewalMargin is subtracted from the provider's reported expiry so the
// token is renewed before it actually expires.
const renewalMargin = 5 * time.Minute

// TokenManager obtains access tokens from Azure AD using the OAuth2
// client-credentials grant.
type TokenManager struct {
	conf   *clientcredentials.Config
	margin time.Duration
}

// NewTokenManager builds a manager for the configured token endpoint.
func NewTokenManager(cfg TokenConfig) *TokenManager {
	return &TokenManager{
		conf: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.Endpoint,
			EndpointParams: url.Values{
				"resource": {cfg.Resource},
			},
			AuthStyle: oauth2.AuthStyleInParams,
		},
		margin: renewalMargin,
	}
}

// Acquire exchanges the client credentials for a bearer token and returns it
// together with the time at which it should be renewed.
func (m *TokenManager) Acquire(ctx context.Context) (string, time.Time, error) {
	token, err := m.conf.Token(ctx)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to get access token: %w", err)
	}

	renewAt := token.Expiry.Add(-m.margin)
	slog.Info("Got access token", "renew_at", renewAt)

	return token.AccessToken, renewAt, nil
}
