package main

import (
	"context"
	"fmt"
	"io"

	"github.com/layebamba/Fadj-Ma-Frontend/api"
	"github.com/layebamba/Fadj-Ma-Frontend/auth"
	"github.com/layebamba/Fadj-Ma-Frontend/dashboard"
	"github.com/layebamba/Fadj-Ma-Frontend/internal/config"
	"github.com/layebamba/Fadj-Ma-Frontend/sessions"
	"github.com/layebamba/Fadj-Ma-Frontend/token"
	"github.com/layebamba/Fadj-Ma-Frontend/token/filestore"
	"github.com/layebamba/Fadj-Ma-Frontend/token/memstore"
	"github.com/layebamba/Fadj-Ma-Frontend/token/redisstore"
	"github.com/rs/zerolog/log"
)

// app is the wiring shared by every command.
type app struct {
	client    *api.Client
	session   *sessions.Controller
	dashboard *dashboard.Service
	out       io.Writer
}

func newApp(baseURL string, store token.Store, out io.Writer, options ...api.ClientOption) (*app, error) {
	navigator := api.NavigatorFunc(func(path string) {
		log.Debug().Str("path", path).Msg("navigate")
	})

	client, err := api.New(baseURL, store, append([]api.ClientOption{api.WithNavigator(navigator)}, options...)...)
	if err != nil {
		return nil, err
	}
	authService, err := auth.NewService(client, store)
	if err != nil {
		return nil, err
	}
	session, err := sessions.NewController(authService, store, sessions.WithNavigator(navigator))
	if err != nil {
		return nil, err
	}
	client.OnSessionExpired(func(ctx context.Context) {
		session.ExpireSession(ctx)
		fmt.Fprintln(out, "Session expirée, reconnectez-vous avec `fadjma login`.")
	})

	return &app{
		client:    client,
		session:   session,
		dashboard: dashboard.NewService(client),
		out:       out,
	}, nil
}

// openStore selects the credential store backend. The returned func releases
// it.
func openStore(ctx context.Context, c config.StoreConfig) (token.Store, func(), error) {
	switch c.GetTokenStore() {
	case "memory":
		return memstore.New(), func() {}, nil
	case "redis":
		s, err := redisstore.Dial(ctx, c.GetRedisAddr(), c.GetRedisDB(), redisstore.WithPrefix(c.GetRedisPrefix()))
		if err != nil {
			return nil, nil, err
		}
		return s, func() {
			if err := s.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close redis store")
			}
		}, nil
	case "file", "":
		path := c.GetTokenFile()
		if path == "" {
			var err error
			if path, err = filestore.DefaultPath(); err != nil {
				return nil, nil, err
			}
		}
		s, err := filestore.New(path)
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	default:
		return nil, nil, fmt.Errorf("[openStore] unknown token store %q", c.GetTokenStore())
	}
}
