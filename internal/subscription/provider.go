package subscription

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/TonniAndreev/doteworld-sub001/internal/config"

	"github.com/rs/zerolog/log"
)

// CustomerInfo mirrors what the billing platform knows about a user.
type CustomerInfo struct {
	UserID      string    `json:"user_id"`
	Active      bool      `json:"active"`
	Entitlement string    `json:"entitlement"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Provider abstracts the subscription/IAP platform that gates the
// unlimited-paws entitlement.
type Provider interface {
	CustomerInfo(ctx context.Context, userID string) (CustomerInfo, error)
}

var ErrUnavailable = errors.New("subscription service unavailable")

func New(cfg config.Config) Provider {
	if cfg.SubscriptionProvider == "network" && cfg.SubscriptionAPIURL != "" {
		return &APIProvider{
			BaseURL: strings.TrimRight(cfg.SubscriptionAPIURL, "/"),
			APIKey:  cfg.SubscriptionAPIKey,
			Client:  &http.Client{Timeout: 10 * time.Second},
		}
	}
	return StubProvider{}
}

// StubProvider reports no active subscription.
type StubProvider struct{}

func (StubProvider) CustomerInfo(_ context.Context, userID string) (CustomerInfo, error) {
	return CustomerInfo{UserID: userID, Active: false}, nil
}

// APIProvider queries the billing platform's REST API.
type APIProvider struct {
	BaseURL string
	APIKey  string
	Client  *http.Client
}

func (p *APIProvider) CustomerInfo(ctx context.Context, userID string) (CustomerInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/subscribers/"+userID, nil)
	if err != nil {
		return CustomerInfo{}, err
	}
	if p.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.APIKey)
	}

	resp, err := p.Client.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("subscription lookup failed")
		return CustomerInfo{}, ErrUnavailable
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return CustomerInfo{UserID: userID, Active: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return CustomerInfo{}, ErrUnavailable
	}

	var info CustomerInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return CustomerInfo{}, err
	}
	info.UserID = userID
	if info.Active && !info.ExpiresAt.IsZero() && time.Now().After(info.ExpiresAt) {
		info.Active = false
	}
	return info, nil
}
