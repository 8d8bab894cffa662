package config

import (
	"flag"
	"fmt"
	"os"
	"time"
)

type Config struct {
	WindowSize        int
	MinHold           time.Duration
	QuoteAsset        string
	APIBaseURL        string
	WSBaseURL         string
	RequestTimeout    time.Duration
	RequestsPerSecond float64
	DecisionsPath     string
	MetricsAddr       string
	NotifyPath        string
	APIKey            string
	SecretKey         string
}

func Load() (Config, error) {
	var cfg Config

	loadDotEnvIfPresent(".env")

	flag.IntVar(&cfg.WindowSize, "window-size", 300, "ticks in the rolling average window")
	flag.DurationVar(&cfg.MinHold, "min-hold", 10*time.Minute, "minimum time between signals per instrument (declared, not enforced)")
	flag.StringVar(&cfg.QuoteAsset, "quote-asset", "USDT", "quote asset all pairs must settle in")
	flag.StringVar(&cfg.APIBaseURL, "api-url", "https://api.binance.com", "venue REST base URL")
	flag.StringVar(&cfg.WSBaseURL, "ws-url", "wss://stream.binance.com:9443", "venue websocket base URL")
	flag.DurationVar(&cfg.RequestTimeout, "request-timeout", 15*time.Second, "timeout per outbound gateway request")
	flag.Float64Var(&cfg.RequestsPerSecond, "request-rate", 10, "outbound gateway requests per second")
	flag.StringVar(&cfg.DecisionsPath, "decisions-path", "decisions.ndjson", "path to decisions log")
	flag.StringVar(&cfg.MetricsAddr, "metrics-addr", ":9102", "listen address for /metrics")
	flag.StringVar(&cfg.NotifyPath, "notify-config", "", "optional YAML file with mail/telegram settings")
	flag.Parse()

	cfg.APIKey = os.Getenv("EXCHANGE_API_KEY")
	cfg.SecretKey = os.Getenv("EXCHANGE_SECRET_KEY")

	if err := validate(cfg); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.WindowSize <= 1 {
		return fmt.Errorf("window-size must be > 1")
	}
	if cfg.MinHold < 0 {
		return fmt.Errorf("min-hold must be >= 0")
	}
	if cfg.QuoteAsset == "" {
		return fmt.Errorf("quote-asset is required")
	}
	if cfg.APIBaseURL == "" || cfg.WSBaseURL == "" {
		return fmt.Errorf("api-url and ws-url are required")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("request-timeout must be > 0")
	}
	if cfg.RequestsPerSecond <= 0 {
		return fmt.Errorf("request-rate must be > 0")
	}
	if cfg.APIKey == "" || cfg.SecretKey == "" {
		return fmt.Errorf("EXCHANGE_API_KEY and EXCHANGE_SECRET_KEY are required")
	}
	return nil
}
