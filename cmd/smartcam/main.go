package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tanat44/SmartCam/internal/bucket"
	"github.com/tanat44/SmartCam/internal/config"
	"github.com/tanat44/SmartCam/internal/logger"
	"github.com/tanat44/SmartCam/internal/storage"
	"github.com/tanat44/SmartCam/internal/view"
)

var (
	configPath = flag.String("config", "configs/config.yaml", "Path to configuration file")
	fromDate   = flag.String("from", "", "First day of the range (YYYY-MM-DD, default today)")
	toDate     = flag.String("to", "", "Last day of the range (YYYY-MM-DD, default same as -from)")
	keyword    = flag.String("keyword", "", "Label keyword to filter by")
	camera     = flag.Int("camera", -1, "Camera index whose day series to print")
	day        = flag.Int("day", 0, "Day index (from -from) of the series to print")
	importPath = flag.String("import", "", "JSON dump to import into the sqlite store before reporting")
	exportPath = flag.String("export", "", "Write the fetched raw events to this JSON file")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	logger.Init(cfg.Logging.Level, cfg.Logging.Format)
	logger.Info("Configuration loaded from %s", *configPath)

	loc, err := cfg.Location()
	if err != nil {
		logger.Fatal("Invalid timezone: %v", err)
	}

	from, to, err := parseRange(*fromDate, *toDate, loc)
	if err != nil {
		logger.Fatal("Invalid date range: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	source, closeSource, err := openSource(ctx, cfg, loc)
	if err != nil {
		logger.Fatal("Failed to open source: %v", err)
	}
	defer closeSource()

	if *exportPath != "" {
		raw, err := source.Fetch(ctx, from, to)
		if err != nil {
			logger.Fatal("Failed to fetch events for export: %v", err)
		}
		if err := storage.WriteFile(*exportPath, raw, 0o644); err != nil {
			logger.Fatal("Failed to export events: %v", err)
		}
		logger.Info("Exported %d cameras x %d days to %s", raw.CameraCount(), raw.DayCount(), *exportPath)
	}

	palette := bucket.Palette(cfg.Palette.Colors)
	v := view.New(source, palette.Size(), loc)

	if err := v.OnDateRangeChange(ctx, from, to); err != nil {
		logger.Error("No data for %s..%s: %v", from.Format(time.DateOnly), to.Format(time.DateOnly), err)
		os.Exit(1)
	}
	if *keyword != "" {
		v.OnKeywordChange(*keyword)
	}

	report(v, palette)

	if *camera >= 0 {
		if err := v.OnCellSelect(*camera, *day); err != nil {
			logger.Fatal("Cannot open series: %v", err)
		}
		printSeries(v)
	}
}

// openSource returns the configured raw event source and a function releasing it.
func openSource(ctx context.Context, cfg *config.Config, loc *time.Location) (storage.Source, func(), error) {
	if cfg.Source.Kind == "file" {
		if *importPath != "" {
			logger.Warn("-import ignored: source.kind is file")
		}
		logger.Debug("Reading raw events from %s", cfg.Source.FilePath)
		return storage.NewFileSource(cfg.Source.FilePath), func() {}, nil
	}

	store, err := storage.New(cfg.Source.DBPath, loc)
	if err != nil {
		return nil, nil, err
	}
	closeStore := func() {
		if err := store.Close(); err != nil {
			logger.Error("Failed to close storage: %v", err)
		}
	}

	for _, name := range cfg.Storage.Cameras {
		if _, err := store.AddCamera(ctx, name); err != nil {
			closeStore()
			return nil, nil, fmt.Errorf("failed to register camera %q: %w", name, err)
		}
	}

	if *importPath != "" {
		raw, err := storage.ReadFile(*importPath)
		if err != nil {
			closeStore()
			return nil, nil, err
		}
		imported, skipped, err := store.Import(ctx, raw)
		if err != nil {
			closeStore()
			return nil, nil, fmt.Errorf("failed to import %s: %w", *importPath, err)
		}
		logger.Info("Imported %d detections from %s (%d skipped)", imported, *importPath, skipped)
	}

	if cfg.Storage.Retention > 0 {
		removed, err := store.Prune(ctx, time.Now().Add(-cfg.Storage.Retention))
		if err != nil {
			logger.Warn("Failed to prune detections: %v", err)
		} else if removed > 0 {
			logger.Info("Pruned %d detections older than %v", removed, cfg.Storage.Retention)
		}
	}

	return store, closeStore, nil
}

func parseRange(from, to string, loc *time.Location) (time.Time, time.Time, error) {
	start := time.Now().In(loc)
	if from != "" {
		t, err := time.ParseInLocation(time.DateOnly, from, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad -from: %w", err)
		}
		start = t
	}
	end := start
	if to != "" {
		t, err := time.ParseInLocation(time.DateOnly, to, loc)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("bad -to: %w", err)
		}
		end = t
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("-to %s is before -from %s", to, from)
	}
	return start, end, nil
}

func report(v *view.View, palette bucket.Palette) {
	g := v.Filtered()
	maxDetection := v.MaxDetection()
	kw := v.Keyword()
	if kw == "" {
		kw = "(none)"
	}
	logger.Info("Grid: %d cameras x %d days, keyword %s, max detection %d",
		g.Cameras(), g.Days(), kw, maxDetection)

	for _, s := range bucket.Summarize(g) {
		if s.Total == 0 {
			logger.Info("Camera %d: no detection", s.Camera+1)
			continue
		}
		peak, _ := g.At(s.Camera, s.PeakSlot, s.PeakDay)
		logger.Info("Camera %d: %d detections, %.1f per day, busiest slot %s, peak %s on %s at %s (%s) [%s]",
			s.Camera+1, s.Total, s.MeanPerDay, bucket.SlotLabel(s.BusiestSlot),
			peak.Header(), v.DayDate(s.PeakDay).Format("2/1/2006"), bucket.SlotLabel(s.PeakSlot),
			peak.LabelText(), palette.Color(s.PeakCount, maxDetection))
	}
}

func printSeries(v *view.View) {
	_, sel := v.State()
	logger.Info("Camera %d, date %s", sel.Camera+1, v.DayDate(sel.Day).Format("2/1/2006"))
	for _, p := range v.Series() {
		cols := make([]string, 0, len(p.PerCamera))
		for c := 0; c < len(p.PerCamera); c++ {
			cols = append(cols, fmt.Sprintf("%s=%d", p.Key(c), p.PerCamera[c]))
		}
		logger.Info("%6s  %s", p.SlotLabel, strings.Join(cols, " "))
	}
}
