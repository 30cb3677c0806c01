package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/llehouerou/essai/internal/api"
	"github.com/llehouerou/essai/internal/state"
)

const commandTimeout = 30 * time.Second

// errNotLoggedIn is returned by commands that need an account.
var errNotLoggedIn = errors.New("not logged in. Run 'essai login' first")

// openState opens the local database.
func openState() (*state.Manager, error) {
	st, err := state.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open state: %w", err)
	}
	return st, nil
}

// newClient returns an API client. A configured token wins over the one
// stored by 'essai login'.
func newClient(st *state.Manager) *api.Client {
	ac := cfg.GetAPIConfig()
	client := api.NewClient(ac.BaseURL,
		api.WithTimeout(ac.Timeout),
		api.WithRateLimit(ac.RateLimit),
		api.WithLogger(componentLogger("api")),
	)

	token := ac.Token
	if token == "" && st != nil {
		stored, err := st.Token()
		if err != nil {
			logger.Warn("reading stored token", "err", err)
		}
		token = stored
	}
	if token != "" {
		if exp, ok := api.TokenExpiry(token); ok && time.Now().After(exp) {
			logger.Info("stored token expired", "expired", exp)
		} else {
			client.SetToken(token)
		}
	}
	return client
}

// withClient runs fn with a client and the local state, closing both.
func withClient(fn func(ctx context.Context, st *state.Manager, c *api.Client) error) error {
	st, err := openState()
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	return fn(ctx, st, newClient(st))
}

// requireLogin fails fast when the client carries no token.
func requireLogin(c *api.Client) error {
	if !c.HasToken() {
		return errNotLoggedIn
	}
	return nil
}
