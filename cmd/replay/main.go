package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"shortbot-go/internal/config"
	"shortbot-go/internal/feature"
	"shortbot-go/internal/journal"
	"shortbot-go/internal/ledger"
	"shortbot-go/internal/policy"
	"shortbot-go/internal/strategy"
	"shortbot-go/internal/util"
)

// row is one historical tick loaded from CSV: unix seconds, price, and the
// feed's cumulative volume counter.
type row struct {
	ts     int64
	price  float64
	volume float64
}

func loadCSV(path string) ([]row, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols := map[string]int{}
	for i, name := range header {
		cols[name] = i
	}
	for _, need := range []string{"time", "close", "volume"} {
		if _, ok := cols[need]; !ok {
			return nil, fmt.Errorf("csv missing column %q", need)
		}
	}

	var rows []row
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		ts, err := strconv.ParseInt(record[cols["time"]], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad time %q: %w", record[cols["time"]], err)
		}
		price, err := strconv.ParseFloat(record[cols["close"]], 64)
		if err != nil {
			return nil, fmt.Errorf("bad close %q: %w", record[cols["close"]], err)
		}
		volume, err := strconv.ParseFloat(record[cols["volume"]], 64)
		if err != nil {
			return nil, fmt.Errorf("bad volume %q: %w", record[cols["volume"]], err)
		}
		rows = append(rows, row{ts: ts, price: price, volume: volume})
	}
	return rows, nil
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to YAML configuration")
	csvPath := flag.String("csv", "", "historical ticks CSV (time,close,volume)")
	outPath := flag.String("out", "", "optional JSONL decision output")
	flag.Parse()

	log := util.NewLogger("info")
	if *csvPath == "" {
		log.Fatal().Msg("-csv is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	scaler, err := feature.LoadScaler(cfg.Artifacts.ScalerPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load scaler artifact")
	}
	pol, err := policy.Build(cfg.Strategy.Mode, policy.Params{
		ModelPath:         cfg.Artifacts.ModelPath,
		ObsSize:           cfg.Strategy.WindowSize * feature.FeatureCount(),
		WindowSize:        cfg.Strategy.WindowSize,
		VelocityThreshold: cfg.Strategy.VelocityThreshold,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("load policy artifact")
	}
	defer pol.Close()

	trades := journal.New(1024)
	var sink journal.Recorder = trades
	if *outPath != "" {
		rec, err := journal.NewJSONLRecorder(*outPath)
		if err != nil {
			log.Fatal().Err(err).Msg("open output journal")
		}
		defer rec.Close()
		sink = fanout{trades, rec}
	}

	strat, err := strategy.Build(cfg.Strategy.Mode, strategy.Deps{
		Symbol:         cfg.Market.Symbol,
		WindowSize:     cfg.Strategy.WindowSize,
		CandlePeriod:   cfg.Strategy.CandlePeriodSec,
		InitialBalance: cfg.Strategy.InitialBalance,
		Scaler:         scaler,
		Policy:         pol,
		Journal:        sink,
		Log:            log,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("build strategy")
	}

	rows, err := loadCSV(*csvPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load historical ticks")
	}
	if len(rows) == 0 {
		log.Fatal().Msg("no rows in csv")
	}

	// Replay the live polling shape: each iteration sees the trailing
	// lookback window ending at the current row.
	lookback := cfg.Market.Lookback
	counts := map[ledger.Decision]int{}
	for i := range rows {
		start := i - lookback + 1
		if start < 0 {
			start = 0
		}
		window := rows[start : i+1]

		prices := make([]float64, len(window))
		volumes := make([]float64, len(window))
		times := make([]int64, len(window))
		for j, r := range window {
			prices[j] = r.price
			volumes[j] = r.volume
			times[j] = r.ts
		}

		decision, err := strat.Run(prices, volumes, times)
		if err != nil {
			log.Fatal().Err(err).Msg("replay batch failed")
		}
		counts[decision]++
	}

	finalPrice := rows[len(rows)-1].price
	log.Info().
		Float64("final_price", finalPrice).
		Float64("portfolio", strat.PortfolioValue(finalPrice)).
		Int("decisions", trades.Len()).
		Msg("replay finished")
	for decision, n := range counts {
		fmt.Printf("%-12s %d\n", decision, n)
	}
}

// fanout duplicates journal entries across sinks.
type fanout []journal.Recorder

func (f fanout) Record(e journal.Entry) {
	for _, r := range f {
		r.Record(e)
	}
}
