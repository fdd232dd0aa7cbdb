package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/trekora/trek-api/internal/api"
	"github.com/trekora/trek-api/internal/config"
	"github.com/trekora/trek-api/internal/mailer"
	"github.com/trekora/trek-api/internal/platform/postgres"
	"github.com/trekora/trek-api/internal/service/auth"
	"github.com/trekora/trek-api/internal/store"
)

// application holds the wired dependency graph behind the HTTP surface.
type application struct {
	config *config.Config
	logger *slog.Logger

	userStore   store.UserStore
	tourStore   store.TourStore
	reviewStore store.ReviewStore

	tokenService auth.TokenService
	hasher       auth.PasswordHasher
	mail         mailer.Mailer
}

// newApplication constructs the stores and services over the given
// database handle.
func newApplication(cfg *config.Config, db *sql.DB) (*application, error) {
	tokenService, err := auth.NewTokenService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	userStore := postgres.NewUserStore(db)
	tourStore := postgres.NewTourStore(db)
	reviewStore := postgres.NewReviewStore(db, tourStore)

	return &application{
		config:       cfg,
		logger:       slog.Default(),
		userStore:    userStore,
		tourStore:    tourStore,
		reviewStore:  reviewStore,
		tokenService: tokenService,
		hasher:       auth.NewBcryptHasher(),
		mail:         mailer.NewSMTPMailer(cfg.Mail),
	}, nil
}

// handlers bundles the API handlers built from the application's
// dependencies, for route registration.
type handlers struct {
	auth    *api.AuthHandler
	users   *api.UserHandler
	tours   *api.TourHandler
	reviews *api.ReviewHandler
}

func (app *application) newHandlers() handlers {
	return handlers{
		auth:    api.NewAuthHandler(app.userStore, app.tokenService, app.hasher, app.mail, app.config.Auth),
		users:   api.NewUserHandler(app.userStore),
		tours:   api.NewTourHandler(app.tourStore),
		reviews: api.NewReviewHandler(app.reviewStore),
	}
}
