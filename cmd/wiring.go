package cmd

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"

	"railctl/pkg/config"
	"railctl/pkg/scraper"
	"railctl/pkg/tdx"
	"railctl/pkg/tokencache"
	"railctl/pkg/tools"
	"railctl/pkg/trainstatus"
)

// errMissingCredentials stands in for the token exchange when no client id/secret
// is configured, so status reports degrade the same way an auth failure would.
var errMissingCredentials = errors.New("TDX_CLIENT_ID and TDX_CLIENT_SECRET are not set")

type missingCredentials struct{}

func (missingCredentials) Token(ctx context.Context) (*oauth2.Token, error) {
	return nil, errMissingCredentials
}

// app bundles everything a command needs, built from the saved config.
type app struct {
	cfg      *config.AppConfig
	resolver *trainstatus.Resolver
	closers  []func() error
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c())
	}
	return errors.Join(errs...)
}

func (a *app) toolRegistry() *tools.Registry {
	return tools.NewRegistry(a.resolver, scraper.NewClient())
}

// openApp loads the config and wires token store, token cache, TDX client and resolver.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	commute, err := commuteFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}

	store, err := openTokenStore(ctx, cfg, a)
	if err != nil {
		return nil, err
	}

	creds := config.LoadCredentials()
	var exchanger tokencache.Exchanger = missingCredentials{}
	if creds.Configured() {
		exchanger = tokencache.NewClientCredentials(creds.ClientID, creds.ClientSecret, creds.AuthURL)
	} else {
		logger.Warn("TDX credentials missing; live data will be unavailable")
	}

	tokens := tokencache.New(store, exchanger, tokencache.Options{Logger: logger})
	client := tdx.NewClient(tokens, tdx.Options{BaseURL: creds.BaseURL, Logger: logger})

	a.resolver = trainstatus.NewResolver(client, trainstatus.DefaultDirectory(cfg.ExtraStations), trainstatus.Options{
		Commute:  commute,
		Location: loc,
		Logger:   logger,
	})
	return a, nil
}

func openTokenStore(ctx context.Context, cfg *config.AppConfig, a *app) (tokencache.Store, error) {
	switch cfg.TokenStore {
	case config.TokenStoreMemory:
		return tokencache.NewMemoryStore(), nil
	case config.TokenStoreFile, config.TokenStoreSQLite:
	default:
		return nil, fmt.Errorf("unknown token store %q (use file, sqlite or memory)", cfg.TokenStore)
	}

	path, err := cfg.ResolvedTokenPath()
	if err != nil {
		return nil, err
	}

	if cfg.TokenStore == config.TokenStoreFile {
		return tokencache.NewFileStore(path), nil
	}

	s, err := tokencache.OpenSQLiteStore(ctx, path)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, s.Close)
	return s, nil
}

func commuteFromConfig(cfg *config.AppConfig) (trainstatus.Commute, error) {
	morning, err := trainstatus.ParseClockWindow(cfg.MorningWindow.Start, cfg.MorningWindow.End)
	if err != nil {
		return trainstatus.Commute{}, fmt.Errorf("invalid morning window: %w", err)
	}
	evening, err := trainstatus.ParseClockWindow(cfg.EveningWindow.Start, cfg.EveningWindow.End)
	if err != nil {
		return trainstatus.Commute{}, fmt.Errorf("invalid evening window: %w", err)
	}
	return trainstatus.Commute{
		Origin:      cfg.CommuteOrigin,
		Destination: cfg.CommuteDestination,
		Morning:     morning,
		Evening:     evening,
	}, nil
}
