package main

import (
	"context"
	"fmt"

	"github.com/AbdulWasayUl/go-country-currency/internal/channels"
	"github.com/AbdulWasayUl/go-country-currency/internal/config"
	"github.com/AbdulWasayUl/go-country-currency/internal/db"
	"github.com/AbdulWasayUl/go-country-currency/internal/logger"
	"github.com/AbdulWasayUl/go-country-currency/internal/render"
	"github.com/AbdulWasayUl/go-country-currency/internal/storage"
	"github.com/AbdulWasayUl/go-country-currency/internal/workpool"
	"github.com/AbdulWasayUl/go-country-currency/services/country"
	"go.mongodb.org/mongo-driver/mongo"
)

// application holds everything both commands need.
type application struct {
	cfg       *config.Config
	client    *mongo.Client
	chans     *channels.Channels
	pool      *workpool.WorkerPool
	artifacts storage.Store
	service   *country.Service
}

func bootstrap(ctx context.Context) (*application, error) {
	cfg, err := config.Load(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	logger.Init(cfg.Log)

	client, err := db.ConnectMongoDB(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := db.RunMigrations(ctx, client, cfg); err != nil {
		_ = db.DisconnectMongoDB(ctx, client)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	artifacts, err := storage.New(ctx, cfg.Artifact)
	if err != nil {
		_ = db.DisconnectMongoDB(ctx, client)
		return nil, fmt.Errorf("failed to initialize artifact storage: %w", err)
	}

	chans := channels.New()
	wp := workpool.New(chans, cfg.Refresh.Workers)
	wp.Start(ctx)

	store := country.NewMongoStore(client.Database(cfg.Mongo.Database), cfg.Mongo.Collection)
	svc := country.NewService(country.NewGateway(cfg.Upstream), store, render.New(artifacts), wp)

	return &application{
		cfg:       cfg,
		client:    client,
		chans:     chans,
		pool:      wp,
		artifacts: artifacts,
		service:   svc,
	}, nil
}

// close drains the worker pool and pending renders before disconnecting.
func (a *application) close(ctx context.Context) {
	a.pool.Stop()

	logger.Info("Waiting for pending worker jobs to finish...")
	a.chans.WG.Wait()
	a.service.Wait()

	if err := db.DisconnectMongoDB(ctx, a.client); err != nil {
		logger.Error("Error disconnecting MongoDB: %v", err)
	}
	logger.Sync()
}
