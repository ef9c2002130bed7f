package tokencache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"railctl/pkg/logging"
)

// DefaultMargin is how long before expiry a cached token is considered stale.
const DefaultMargin = 600 * time.Second

const defaultKey = "tdx"

// ErrTokenUnavailable is returned when no valid token could be obtained.
var ErrTokenUnavailable = errors.New("access token unavailable")

// Exchanger performs the network credential exchange.
// *clientcredentials.Config satisfies it.
type Exchanger interface {
	Token(ctx context.Context) (*oauth2.Token, error)
}

// Options tune a Cache. The zero value is usable.
type Options struct {
	Key        string
	Margin     time.Duration
	Now        func() time.Time
	Logger     *slog.Logger
	HTTPClient *http.Client
}

// Cache returns a cached bearer token or refreshes it through an Exchanger.
type Cache struct {
	store      Store
	exchanger  Exchanger
	key        string
	margin     time.Duration
	now        func() time.Time
	logger     *slog.Logger
	httpClient *http.Client
}

// NewClientCredentials builds the exchanger for a client id/secret pair. TDX expects
// the credentials as form fields rather than basic auth.
func NewClientCredentials(clientID, clientSecret, tokenURL string) *clientcredentials.Config {
	return &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}
}

func New(store Store, exchanger Exchanger, opts Options) *Cache {
	c := &Cache{
		store:      store,
		exchanger:  exchanger,
		key:        opts.Key,
		margin:     opts.Margin,
		now:        opts.Now,
		logger:     logging.OrNop(opts.Logger),
		httpClient: opts.HTTPClient,
	}
	if c.key == "" {
		c.key = defaultKey
	}
	if c.margin <= 0 {
		c.margin = DefaultMargin
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return c
}

// Token returns a bearer token that stays valid for at least the safety margin.
// Any failure is reported as ErrTokenUnavailable.
func (c *Cache) Token(ctx context.Context) (string, error) {
	now := c.now()

	if e, ok := c.store.Get(ctx, c.key); ok && e.AccessToken != "" && e.ExpiresAt.After(now.Add(c.margin)) {
		return e.AccessToken, nil
	}

	c.logger.Info("requesting new TDX access token")

	tok, err := c.exchanger.Token(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
	if err != nil {
		c.logger.Warn("token exchange failed", "error", err)
		return "", fmt.Errorf("%w: %w", ErrTokenUnavailable, err)
	}
	if tok == nil || tok.AccessToken == "" {
		return "", fmt.Errorf("%w: response missing access_token", ErrTokenUnavailable)
	}

	lifetime, ok := lifetimeOf(tok, now)
	if !ok {
		return "", fmt.Errorf("%w: response missing expires_in", ErrTokenUnavailable)
	}

	entry := Entry{AccessToken: tok.AccessToken, ExpiresAt: now.Add(lifetime)}
	if err := c.store.Put(ctx, c.key, entry); err != nil {
		c.logger.Warn("could not persist access token", "error", err)
	}

	return entry.AccessToken, nil
}

// lifetimeOf prefers the raw expires_in field. Without it, the absolute Expiry is
// measured against now so every path uses the cache clock.
func lifetimeOf(tok *oauth2.Token, now time.Time) (time.Duration, bool) {
	var seconds int64
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		seconds = int64(v)
	case int:
		seconds = int64(v)
	case int64:
		seconds = v
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		seconds = n
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		seconds = n
	default:
		if tok.Expiry.IsZero() || !tok.Expiry.After(now) {
			return 0, false
		}
		return tok.Expiry.Sub(now), true
	}
	if seconds <= 0 {
		return 0, false
	}
	return time.Duration(seconds) * time.Second, true
}
