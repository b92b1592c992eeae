package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/gcbaptista/course-search-engine/api"
	"github.com/gcbaptista/course-search-engine/config"
	"github.com/gcbaptista/course-search-engine/internal/analytics"
	"github.com/gcbaptista/course-search-engine/internal/engine"
	"github.com/gcbaptista/course-search-engine/internal/lexicon"
	"github.com/gcbaptista/course-search-engine/internal/logger"
	"github.com/gcbaptista/course-search-engine/internal/ranking"
	"github.com/gcbaptista/course-search-engine/model"
)

const (
	version       = "1.0.0"
	analyticsFile = "analytics.json"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "course-search",
		Usage:   "Course search and relevance ranking engine",
		Version: version,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP search service",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "Port to listen on (overrides the config file)",
					},
					&cli.StringFlag{
						Name:    "data-dir",
						Aliases: []string{"d"},
						Usage:   "Directory holding catalog data (overrides the config file)",
					},
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to a YAML configuration file",
						EnvVars: []string{"COURSE_SEARCH_CONFIG"},
					},
					&cli.StringFlag{
						Name:  "lexicon",
						Usage: "Path to a YAML lexicon overlay (overrides the config file)",
					},
					&cli.StringFlag{
						Name:    "log-level",
						Aliases: []string{"l"},
						Usage:   "Set logging level (debug, info, warn, error)",
					},
				},
			},
			{
				Name:   "rank",
				Usage:  "Rank the courses of a JSON file against one query",
				Action: rankCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "catalog-file",
						Aliases:  []string{"f"},
						Usage:    "JSON file holding an array of courses",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Search query",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results to print (0 prints every result)",
						Value:   10,
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "YAML configuration whose scoring section adjusts the weights",
					},
					&cli.StringFlag{
						Name:  "lexicon",
						Usage: "Path to a YAML lexicon overlay",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON with score breakdowns",
					},
				},
			},
		},
	}
}

// loadConfig reads the config file and applies the flags the user set.
func loadConfig(c *cli.Context) (config.ServerConfig, error) {
	cfg, err := config.LoadServerConfig(c.String("config"))
	if err != nil {
		return config.ServerConfig{}, err
	}

	if c.IsSet("port") {
		cfg.HTTP.Port = c.Int("port")
	}
	if c.IsSet("data-dir") {
		cfg.Storage.DataDir = c.String("data-dir")
	}
	if c.IsSet("lexicon") {
		cfg.Lexicon.Path = c.String("lexicon")
	}
	if c.IsSet("log-level") {
		cfg.Logging.Level = c.String("log-level")
	}

	if err := cfg.Validate(); err != nil {
		return config.ServerConfig{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func loadLexicon(path string) (*lexicon.Lexicon, error) {
	if path == "" {
		return lexicon.Default(), nil
	}
	lex, err := lexicon.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load lexicon %s: %w", path, err)
	}
	return lex, nil
}

func serveCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	log, err := logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	lex, err := loadLexicon(cfg.Lexicon.Path)
	if err != nil {
		return err
	}

	base := cfg.BaseScoring()
	eng, err := engine.NewEngine(engine.Options{
		DataDir:            cfg.Storage.DataDir,
		BaseScoring:        &base,
		Lexicon:            lex,
		MaxJobWorkers:      cfg.Jobs.MaxWorkers,
		JobRetention:       time.Duration(cfg.Jobs.RetentionMinutes) * time.Minute,
		MultiSearchWorkers: cfg.Search.MultiSearchWorkers,
		DefaultPageSize:    cfg.Search.DefaultPageSize,
		MaxPageSize:        cfg.Search.MaxPageSize,
		MaxMultiQueries:    cfg.Search.MaxMultiQueries,
		Logger:             log,
	})
	if err != nil {
		return fmt.Errorf("failed to start engine: %w", err)
	}
	defer eng.Close()

	tracker := analytics.NewService(eng, filepath.Join(cfg.Storage.DataDir, analyticsFile), log)
	defer tracker.Flush()

	if cfg.Logging.Env == "production" || cfg.Logging.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(eng, api.Options{
		Logger:       log,
		Analytics:    tracker,
		MaxBodyBytes: cfg.HTTP.MaxBodyBytes,
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("starting HTTP server",
			zap.String("addr", addr),
			zap.String("data_dir", cfg.Storage.DataDir),
			zap.Int("catalogs", len(eng.ListCatalogs())))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("received shutdown signal")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	log.Info("server stopped gracefully")
	return nil
}

func rankCommand(c *cli.Context) error {
	courses, err := readCatalogFile(c.String("catalog-file"))
	if err != nil {
		return err
	}

	cfg := config.DefaultServerConfig()
	if path := c.String("config"); path != "" {
		if cfg, err = config.LoadServerConfig(path); err != nil {
			return err
		}
	}
	lexPath := cfg.Lexicon.Path
	if c.IsSet("lexicon") {
		lexPath = c.String("lexicon")
	}
	lex, err := loadLexicon(lexPath)
	if err != nil {
		return err
	}

	ranker, err := ranking.NewRanker(cfg.BaseScoring(), lex)
	if err != nil {
		return fmt.Errorf("invalid scoring configuration: %w", err)
	}

	results := ranker.Rank(c.String("query"), courses)
	if limit := c.Int("limit"); limit > 0 && len(results) > limit {
		results = results[:limit]
	}

	if c.Bool("json") {
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}
	return printResults(c.App.Writer, results)
}

func readCatalogFile(path string) ([]model.Course, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	var courses []model.Course
	if err := json.Unmarshal(data, &courses); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file %s: %w", path, err)
	}
	return courses, nil
}

func printResults(w io.Writer, results []ranking.ScoredResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "no matching courses")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tCODE\tNAME")
	for i, r := range results {
		code := ""
		if len(r.Course.Codes) > 0 {
			code = r.Course.Codes[0]
		}
		fmt.Fprintf(tw, "%d\t%.2f\t%s\t%s\n", i+1, r.Score, code, r.Course.Name)
	}
	return tw.Flush()
}
