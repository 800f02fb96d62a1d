package main

import (
	"os"

	"discspec/config"
	"discspec/internal/adapter/bluray"
	"discspec/internal/adapter/storage/sqlite"
	"discspec/internal/port"
	"discspec/internal/ratelimit"
	"discspec/internal/service"
)

// app wires the storage, catalog and service layers from config. Commands
// build one per invocation and close it when done.
type app struct {
	cfg    *config.Config
	store  *sqlite.Store
	queue  port.JobQueue
	specs  port.SpecStore
	bus    *service.EventBus
	jobSvc *service.JobService
	worker *service.Worker
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, err
	}

	store, err := sqlite.NewStore(cfg.DataDir)
	if err != nil {
		return nil, err
	}

	queue := sqlite.NewJobQueue(store)
	specs := sqlite.NewSpecStore(store)
	cache := sqlite.NewPageCache(store, cfg.CacheMaxAge)

	fetcher := bluray.NewFetcher(cfg.UserAgent, cfg.FetchTimeout)
	searcher := bluray.NewClient(cfg.BaseURL, fetcher)
	parser := bluray.NewParser()
	throttle := ratelimit.New(cfg.FetchDelay, cfg.FetchJitter)

	bus := service.NewEventBus()
	enricher := service.NewEnricher(specs, cache, fetcher, searcher, parser, throttle)
	worker := service.NewWorker(queue, enricher, bus, cfg.BatchSize, cfg.WorkerInterval)
	jobSvc := service.NewJobService(queue, cfg.BaseURL)

	return &app{
		cfg:    cfg,
		store:  store,
		queue:  queue,
		specs:  specs,
		bus:    bus,
		jobSvc: jobSvc,
		worker: worker,
	}, nil
}

func (a *app) close() {
	_ = a.store.Close()
}
