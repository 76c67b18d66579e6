// Package app is the composition root: it builds the client, stores
// and services once at startup and hands them out as explicit values,
// so tests construct isolated instances instead of sharing globals.
package app

import (
	"errors"
	"fmt"

	"github.com/localmart/storefront-client/internal/api"
	"github.com/localmart/storefront-client/internal/cart"
	"github.com/localmart/storefront-client/internal/catalog"
	"github.com/localmart/storefront-client/internal/orders"
	"github.com/localmart/storefront-client/internal/routing"
	"github.com/localmart/storefront-client/internal/session"
	"github.com/localmart/storefront-client/pkg/config"
	"github.com/localmart/storefront-client/pkg/storage"
)

type App struct {
	Client  *api.Client
	Session *session.Store
	Cart    *cart.Store
	Catalog *catalog.Service
	Orders  *orders.Service
	Guard   *routing.Guard
}

func New(cfg config.Config, persist storage.Store) (*App, error) {
	if persist == nil {
		var err error
		persist, err = storage.NewFileStore(cfg.StatePath)
		if err != nil {
			return nil, fmt.Errorf("open state store: %w", err)
		}
	}

	sess := session.NewStore(persist)
	client := api.New(cfg.APIBaseURL, cfg.RequestTimeout, sess)
	sess.SetAPI(client)

	return &App{
		Client:  client,
		Session: sess,
		Cart:    cart.NewStore(client, sess),
		Catalog: catalog.NewService(client, cfg.CacheTTL),
		Orders:  orders.NewService(client),
		Guard:   routing.NewGuard(sess),
	}, nil
}

// Start restores the persisted session. The cart store hears about the
// resulting status through its subscription and fetches or clears
// accordingly.
func (a *App) Start() {
	a.Session.Restore()
}

// HandleAuthFailure is the one place that reacts to a rejected token:
// any operation that came back with ErrAuthenticationRequired while a
// session existed means the credential is stale and must not be
// presented again. Reports whether the error was an auth failure.
func (a *App) HandleAuthFailure(err error) bool {
	if err == nil || !errors.Is(err, api.ErrAuthenticationRequired) {
		return false
	}
	if a.Session.Status() == session.StatusAuthenticated {
		a.Session.Invalidate()
	}
	return true
}
