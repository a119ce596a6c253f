package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	ossignal "os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"shortbot-go/internal/config"
	"shortbot-go/internal/feature"
	"shortbot-go/internal/journal"
	"shortbot-go/internal/market"
	"shortbot-go/internal/metrics"
	"shortbot-go/internal/notify"
	"shortbot-go/internal/policy"
	"shortbot-go/internal/strategy"
	"shortbot-go/internal/util"
)

// sharedValue lets the notifier goroutines read the latest portfolio value
// without touching strategy state owned by the decision loop.
type sharedValue struct {
	mu    sync.Mutex
	value float64
}

func (s *sharedValue) Set(v float64) {
	s.mu.Lock()
	s.value = v
	s.mu.Unlock()
}

func (s *sharedValue) Get() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.value
}

// recorders fans out journal entries to every configured sink.
type recorders []journal.Recorder

func (r recorders) Record(e journal.Entry) {
	for _, rec := range r {
		rec.Record(e)
	}
}

func parseClock(s string) (int, int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("clock %q is not HH:MM", s)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("bad hour in %q", s)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("bad minute in %q", s)
	}
	return hour, minute, nil
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration")
	envPath := flag.String("env", ".env", "path to dotenv secrets file")
	flag.Parse()

	_ = godotenv.Load(*envPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		bootLog := util.NewLogger("info")
		bootLog.Fatal().Err(err).Msg("load config")
	}
	log := util.NewLogger(cfg.App.LogLevel)

	if cfg.App.MetricsAddr != "" {
		_ = metrics.Serve(cfg.App.MetricsAddr)
		log.Info().Str("addr", cfg.App.MetricsAddr).Msg("metrics up")
	}

	// A balance carried over from the previous session overrides the
	// configured starting cash.
	balance := cfg.Strategy.InitialBalance
	if carried := os.Getenv("BALANCE"); carried != "" {
		if v, err := strconv.ParseFloat(carried, 64); err == nil && v > 0 {
			balance = v
		}
	}

	scaler, err := feature.LoadScaler(cfg.Artifacts.ScalerPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load scaler artifact")
	}

	obsSize := cfg.Strategy.WindowSize * feature.FeatureCount()
	pol, err := policy.Build(cfg.Strategy.Mode, policy.Params{
		ModelPath:         cfg.Artifacts.ModelPath,
		ObsSize:           obsSize,
		WindowSize:        cfg.Strategy.WindowSize,
		VelocityThreshold: cfg.Strategy.VelocityThreshold,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("load policy artifact")
	}
	defer pol.Close()

	trades := journal.New(256)
	sinks := recorders{trades}
	if cfg.Journal.Path != "" {
		rec, err := journal.NewJSONLRecorder(cfg.Journal.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("open trade journal")
		}
		defer rec.Close()
		sinks = append(sinks, rec)
	}

	strat, err := strategy.Build(cfg.Strategy.Mode, strategy.Deps{
		Symbol:         cfg.Market.Symbol,
		WindowSize:     cfg.Strategy.WindowSize,
		CandlePeriod:   cfg.Strategy.CandlePeriodSec,
		InitialBalance: balance,
		Scaler:         scaler,
		Policy:         pol,
		Journal:        sinks,
		Log:            log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build strategy")
	}

	source, err := market.Build(market.Config{
		Provider:     cfg.Market.Provider,
		BaseURL:      cfg.Market.BaseURL,
		WebsocketURL: cfg.Market.WebsocketURL,
		APIToken:     os.Getenv("API_TOKEN"),
	}, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build market source")
	}

	var notifier notify.Notifier = notify.Nop{}
	if cfg.Notify.Enabled {
		n, err := notify.NewSMTPNotifier(
			cfg.Notify.SMTPHost, cfg.Notify.SMTPPort,
			os.Getenv("EMAIL_USER"), os.Getenv("EMAIL_PASSWORD"),
			cfg.Notify.From, cfg.Notify.To, log)
		if err != nil {
			log.Fatal().Err(err).Msg("build notifier")
		}
		notifier = n
	}

	loc, err := time.LoadLocation(cfg.Session.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("tz", cfg.Session.Timezone).Msg("load session timezone")
	}
	openHour, openMinute, err := parseClock(cfg.Session.OpenTime)
	if err != nil {
		log.Fatal().Err(err).Msg("parse session open time")
	}
	closeHour, closeMinute, err := parseClock(cfg.Session.CloseTime)
	if err != nil {
		log.Fatal().Err(err).Msg("parse session close time")
	}

	ctx, cancel := ossignal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if ws, ok := source.(*market.WebsocketSource); ok {
		go func() {
			if err := ws.Run(ctx, cfg.Market.Symbol); err != nil && ctx.Err() == nil {
				log.Error().Err(err).Msg("trade stream stopped")
				cancel()
			}
		}()
	}

	portfolio := &sharedValue{}
	portfolio.Set(balance)

	subject, body := notify.IntroMessage(notify.TimeUntilNextOpen(time.Now(), openHour, openMinute, loc))
	if err := notifier.Notify(subject, body); err != nil {
		log.Warn().Err(err).Msg("intro notification failed")
	}

	// Hourly portfolio update.
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				subject, body := notify.UpdateMessage(strat.Name(), portfolio.Get())
				if err := notifier.Notify(subject, body); err != nil {
					log.Warn().Err(err).Msg("hourly notification failed")
				}
			}
		}
	}()

	// Market-close watchdog: summary, carry the balance over, end the process.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				now := time.Now().In(loc)
				closeAt := time.Date(now.Year(), now.Month(), now.Day(), closeHour, closeMinute, 0, 0, loc)
				if now.Before(closeAt) {
					continue
				}
				final := portfolio.Get()
				log.Info().Float64("portfolio", final).Msg("market closed, sending summary")

				subject, body := notify.SummaryMessage(strat.Name(), final, trades.Summary())
				if err := notifier.Notify(subject, body); err != nil {
					log.Warn().Err(err).Msg("summary notification failed")
				}
				subject, body = notify.EndingMessage(strat.Name(), final,
					notify.TimeUntilNextOpen(now, openHour, openMinute, loc))
				if err := notifier.Notify(subject, body); err != nil {
					log.Warn().Err(err).Msg("ending notification failed")
				}

				env, err := godotenv.Read(*envPath)
				if err != nil {
					env = map[string]string{}
				}
				env["BALANCE"] = strconv.FormatFloat(final, 'f', 2, 64)
				if err := godotenv.Write(env, *envPath); err != nil {
					log.Warn().Err(err).Msg("persist balance failed")
				}
				cancel()
				return
			}
		}
	}()

	log.Info().
		Str("symbol", cfg.Market.Symbol).
		Str("provider", cfg.Market.Provider).
		Str("strategy", strat.Name()).
		Float64("balance", balance).
		Msg("live engine started")

	interval := time.Duration(cfg.Market.PollIntervalMs) * time.Millisecond
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("shutting down")
			return
		case <-ticker.C:
			ticks, err := source.FetchRecent(ctx, cfg.Market.Symbol, cfg.Market.Lookback)
			if err != nil {
				metrics.FetchErrorsTotal.WithLabelValues(cfg.Market.Symbol).Inc()
				log.Warn().Err(err).Msg("fetch failed, retrying next interval")
				continue
			}

			prices := make([]float64, len(ticks))
			volumes := make([]float64, len(ticks))
			times := make([]int64, len(ticks))
			for i, tk := range ticks {
				prices[i] = tk.Price
				volumes[i] = tk.Volume
				times[i] = tk.Ts
			}

			decision, err := strat.Run(prices, volumes, times)
			if err != nil {
				log.Warn().Err(err).Msg("strategy rejected batch")
				continue
			}

			latest := prices[len(prices)-1]
			value := strat.PortfolioValue(latest)
			portfolio.Set(value)
			metrics.PortfolioValue.WithLabelValues(cfg.Market.Symbol).Set(value)
			log.Debug().
				Str("decision", string(decision)).
				Float64("price", latest).
				Float64("portfolio", value).
				Msg("tick batch processed")
		}
	}
}
