package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"clipfinder/resolver"
	"clipfinder/resolver/nba"
	"clipfinder/resolver/teams"
	"clipfinder/resolver/youtube"
	"clipfinder/server"
	"clipfinder/shared/ai"
	"clipfinder/shared/config"
	"clipfinder/shared/monitoring"
	"clipfinder/shared/scheduler"
	"clipfinder/shared/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cache, err := storage.NewResultCache(cfg.Cache.Dir, time.Duration(cfg.Cache.TTLHours)*time.Hour)
	if err != nil {
		log.Fatalf("Failed to open result cache: %v", err)
	}
	log.Printf("Result cache loaded (%d entries)", cache.Len())

	var interpreter resolver.Interpreter
	if cfg.AI.GeminiAPIKey != "" {
		in, err := ai.NewInterpreter(&cfg.AI)
		if err != nil {
			log.Fatalf("Failed to create interpreter: %v", err)
		}
		interpreter = in
	} else {
		log.Println("Warning: No Gemini API key configured, every query will use the fallback search")
	}

	res := resolver.New(
		teams.NewDirectory(),
		interpreter,
		nba.NewClient(&cfg.NBA),
		youtube.NewClient(&cfg.YouTube),
		cache,
		&cfg.Resolver,
	)

	if query, once, err := onceQuery(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	} else if once {
		runOnce(ctx, res, query)
		return
	}

	monitor := monitoring.NewMonitor()
	srv := server.New(res, monitor, time.Duration(cfg.Resolver.SearchTimeoutSeconds)*time.Second)

	sched := scheduler.New()
	if err := sched.Add(scheduler.Job{
		Name:     "cache-sweep",
		Schedule: cfg.Cache.SweepSchedule,
		Run: func() error {
			removed, err := cache.Sweep()
			if removed > 0 {
				log.Printf("Cache sweep removed %d expired entries", removed)
			}
			return err
		},
	}); err != nil {
		log.Fatalf("Failed to schedule cache sweep: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: srv.Routes(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP shutdown error: %v", err)
		}
	}()

	log.Printf("Listening on :%d", cfg.Server.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}

// onceQuery parses a `--once "<query>"` invocation. A --once flag without a
// query is an error rather than a silent fallthrough into daemon mode.
func onceQuery(args []string) (string, bool, error) {
	if len(args) < 2 || args[1] != "--once" {
		return "", false, nil
	}
	if len(args) < 3 || strings.TrimSpace(args[2]) == "" {
		return "", false, fmt.Errorf("usage: %s --once \"<query>\"", args[0])
	}
	return args[2], true, nil
}

func runOnce(ctx context.Context, res *resolver.Resolver, query string) {
	result := res.Resolve(ctx, query)

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	if !result.Success {
		os.Exit(1)
	}
}
