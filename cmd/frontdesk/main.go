package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/jwalitptl/frontdesk/internal/api"
	"github.com/jwalitptl/frontdesk/internal/auth"
	"github.com/jwalitptl/frontdesk/internal/config"
	"github.com/jwalitptl/frontdesk/internal/storage"
	"github.com/jwalitptl/frontdesk/internal/store"
	"github.com/jwalitptl/frontdesk/internal/stream"
	"github.com/jwalitptl/frontdesk/internal/view"
	"github.com/jwalitptl/frontdesk/internal/worker"
	"github.com/jwalitptl/frontdesk/pkg/logger"
	"github.com/jwalitptl/frontdesk/pkg/metrics"
)

func main() {
	log := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err, "failed to load config")
	}

	sessions := storage.NewFileStore(afero.NewOsFs(), cfg.StateDir)

	clientOpts := []api.Option{
		api.WithLogger(log.WithComponent("api")),
		api.WithTokenSource(sessions),
		api.WithHTTPClient(&http.Client{Timeout: cfg.API.Timeout()}),
	}
	storeOpts := []store.Option{}
	if cfg.Metrics.Enabled {
		m := metrics.New(cfg.Metrics.Namespace)
		if err := m.Register(prometheus.DefaultRegisterer); err != nil {
			log.Fatal(err, "failed to register metrics")
		}
		clientOpts = append(clientOpts, api.WithMetrics(m))
		storeOpts = append(storeOpts, store.WithMetrics(m))
	}
	client := api.NewClient(cfg.API.BaseURL, clientOpts...)

	authStore := auth.NewStore(client, sessions, log)
	if err := authStore.Restore(); err != nil {
		log.Fatal(err, "failed to restore session")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if !authStore.IsAuthenticated() {
		email := os.Getenv("FRONTDESK_EMAIL")
		password := os.Getenv("FRONTDESK_PASSWORD")
		if email == "" || password == "" {
			log.Fatal(nil, "no session found; set FRONTDESK_EMAIL and FRONTDESK_PASSWORD to log in")
		}
		if err := authStore.Login(ctx, email, password); err != nil {
			log.Fatal(err, "login failed", "message", authStore.Err())
		}
	}

	appStore := store.NewStore(client, sessions, log, storeOpts...)

	refresher := worker.NewRefresher(appStore, cfg.Refresh.Interval(), cfg.Refresh.WindowHours, log)
	go refresher.Start(ctx)

	if cfg.Stream.Enabled {
		url := cfg.Stream.URL
		if url == "" {
			url = alertStreamURL(cfg.API.BaseURL)
		}
		go stream.NewListener(url, appStore, log).Run(ctx)
	}

	run(ctx, appStore, log)
}

// run logs a dashboard summary after every state change, coalesced to at
// most one line per second.
func run(ctx context.Context, appStore *store.Store, log *logger.Logger) {
	changes := appStore.Subscribe()
	throttle := time.NewTicker(time.Second)
	defer throttle.Stop()

	dirty := false
	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down")
			return
		case <-changes:
			dirty = true
		case <-throttle.C:
			if !dirty {
				continue
			}
			dirty = false

			stats := view.ComputeStats(view.Filter{WindowHours: 48}.Apply(appStore.Appointments(), time.Now()))
			unresolved := len(view.UnresolvedAlerts(appStore.Alerts()))
			log.Info("dashboard",
				"next_48h", stats.Total,
				"verified", stats.Verified,
				"needs_review", stats.NeedsReview,
				"expired", stats.Expired,
				"open_alerts", unresolved,
			)
		}
	}
}

// alertStreamURL derives the websocket endpoint from the API base URL.
func alertStreamURL(baseURL string) string {
	url := strings.Replace(baseURL, "https://", "wss://", 1)
	url = strings.Replace(url, "http://", "ws://", 1)
	return url + "/ws/alerts"
}
