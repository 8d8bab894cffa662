package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"driftbot/internal/config"
	"driftbot/internal/engine"
	"driftbot/internal/feed"
	"driftbot/internal/gateway"
	"driftbot/internal/metrics"
	"driftbot/internal/notify"
	"driftbot/internal/risk"
	"driftbot/internal/state"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	runID := generateRunID()
	decisions, err := engine.NewDecisionLogger(cfg.DecisionsPath, runID)
	if err != nil {
		log.Fatalf("decision logger error: %v", err)
	}
	defer func() {
		if err := decisions.Close(); err != nil {
			log.Printf("failed to close decision logger: %v", err)
		}
	}()

	notifiers, err := buildNotifiers(cfg.NotifyPath)
	if err != nil {
		log.Fatalf("notify config error: %v", err)
	}

	store := state.NewStore(cfg.WindowSize)
	gatewayClient := gateway.New(cfg.APIKey, cfg.SecretKey, cfg.APIBaseURL, cfg.QuoteAsset, cfg.RequestTimeout, cfg.RequestsPerSecond)
	engineImpl := engine.New(store, risk.Gate{}, gatewayClient, decisions, notifiers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalChan
		log.Printf("shutdown signal received")
		cancel()
	}()

	go func() {
		log.Printf("metrics listening on %s", cfg.MetricsAddr)
		server := &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler()}
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	symbols, err := engineImpl.Start(ctx)
	if err != nil {
		log.Fatalf("startup reload failed: %v", err)
	}
	log.Printf("starting bot run_id=%s window=%d instruments=%d", runID, cfg.WindowSize, len(symbols))

	streamURL := feed.StreamURL(cfg.WSBaseURL, symbols)
	err = feed.Stream(ctx, streamURL, func(tick feed.Tick) error {
		return engineImpl.OnTick(ctx, tick)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		// No reconnect here: a dead feed means a dead bot, supervision
		// restarts the process.
		log.Printf("market feed stopped: %v", err)
	}

	log.Printf("bot shutdown complete")
}

func buildNotifiers(path string) (notify.Multi, error) {
	notifyCfg, err := config.LoadNotify(path)
	if err != nil {
		return nil, err
	}
	var notifiers notify.Multi
	if notifyCfg.Mail.Enabled {
		notifiers = append(notifiers, &notify.Mailer{
			Host:     notifyCfg.Mail.Host,
			Port:     notifyCfg.Mail.Port,
			Username: notifyCfg.Mail.Username,
			Password: notifyCfg.Mail.Password,
			From:     notifyCfg.Mail.From,
			To:       notifyCfg.Mail.To,
		})
	}
	if notifyCfg.Telegram.Enabled {
		notifiers = append(notifiers, notify.NewTelegram(notifyCfg.Telegram.Token, notifyCfg.Telegram.ChatID))
	}
	return notifiers, nil
}

func generateRunID() string {
	timestamp := time.Now().UTC().Format("20060102T150405")
	randomBytes := make([]byte, 4)
	if _, err := rand.Read(randomBytes); err != nil {
		return timestamp
	}
	return timestamp + "-" + hex.EncodeToString(randomBytes)
}
