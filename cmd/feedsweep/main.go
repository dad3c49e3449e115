package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"feedsweep/adapter/fetch"
	"feedsweep/adapter/postgres"
	"feedsweep/app"
	"feedsweep/cli/control"
	"feedsweep/internal/config"
	"feedsweep/internal/helper"
	"feedsweep/internal/oplog"
)

func main() {
	if len(os.Args) < 2 {
		helper.PrintHelp()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "--help", "-h", "help":
		helper.PrintHelp()
		return
	case "run":
		err = cmdRun(args)
	case "add":
		err = cmdAdd(args)
	case "list":
		err = cmdList(args)
	case "delete":
		err = cmdDelete(args)
	case "articles":
		err = cmdArticles(args)
	case "sweep":
		err = cmdSweep(args)
	case "logs":
		err = cmdLogs(args)
	case "set-interval":
		err = cmdSetInterval(args)
	case "set-workers":
		err = cmdSetWorkers(args)
	default:
		fmt.Printf("unknown command: %s\n\n", cmd)
		helper.PrintHelp()
		os.Exit(1)
	}
	if err != nil {
		log.Printf("%v", err)
		os.Exit(1)
	}
}

func cmdRun(args []string) error {
	cfg := config.Load()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	listener, err := control.TryListen(cfg.ControlAddr)
	if err != nil {
		if errors.Is(err, control.ErrAlreadyRunning) {
			fmt.Println("Background sweeper is already running")
		}
		return err
	}
	defer listener.Close()

	database, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	repo := postgres.New(database)
	if err := repo.Ensure(context.Background()); err != nil {
		return fmt.Errorf("db ensure failed: %w", err)
	}

	logs := oplog.New(cfg.OplogCapacity)
	fetcher := fetch.NewHTTPFetcher(cfg.FetchTimeout, cfg.UserAgent)
	sweeper := app.NewSweeper(repo, fetcher, logs, app.Options{
		Interval:         cfg.SweepInterval,
		Workers:          cfg.SweepWorkers,
		FailureThreshold: cfg.FailureThreshold,
		FetchRate:        cfg.FetchRate,
		Logger:           logger,
	})
	ctrl := control.NewServer(sweeper, logs)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go func() {
		_ = http.Serve(listener, ctrl)
	}()

	if err := sweeper.Start(ctx); err != nil {
		return err
	}

	logger.Info("sweeper started", "interval", cfg.SweepInterval, "workers", cfg.SweepWorkers)

	<-ctx.Done()
	_ = sweeper.Stop()
	logger.Info("graceful shutdown: sweeper stopped")
	return nil
}

func cmdAdd(args []string) error {
	fset := flag.NewFlagSet("add", flag.ContinueOnError)
	var name, url, cronExpr string
	fset.StringVar(&name, "name", "", "feed name")
	fset.StringVar(&url, "url", "", "feed URL")
	fset.StringVar(&cronExpr, "cron", "* * * * *", "fetch schedule (5-field cron)")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" || strings.TrimSpace(url) == "" {
		return fmt.Errorf("both --name and --url are required")
	}
	if err := helper.IsValidURL(url); err != nil {
		return err
	}
	if err := helper.IsValidCron(cronExpr); err != nil {
		return err
	}
	repo, closeDB, err := openRepo()
	if err != nil {
		return err
	}
	defer closeDB()
	return repo.AddFeed(context.Background(), name, url, cronExpr)
}

func cmdList(args []string) error {
	fset := flag.NewFlagSet("list", flag.ContinueOnError)
	var num int
	fset.IntVar(&num, "num", 0, "limit number of feeds (0 = all)")
	if err := fset.Parse(args); err != nil {
		return err
	}
	repo, closeDB, err := openRepo()
	if err != nil {
		return err
	}
	defer closeDB()
	feeds, err := repo.ListFeeds(context.Background(), num)
	if err != nil {
		return err
	}
	fmt.Println("# Configured Feeds")
	fmt.Println()
	for i, f := range feeds {
		status := "active"
		if !f.IsActive {
			status = fmt.Sprintf("inactive (errors: %d, last: %s)", f.ErrorCount, f.LastError)
		}
		fmt.Printf("%d. Name: %s\n   URL: %s\n   Cron: %s\n   Status: %s\n\n", i+1, f.Name, f.URL, f.Cron, status)
	}
	return nil
}

func cmdDelete(args []string) error {
	fset := flag.NewFlagSet("delete", flag.ContinueOnError)
	var name string
	fset.StringVar(&name, "name", "", "feed name")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("--name is required")
	}
	repo, closeDB, err := openRepo()
	if err != nil {
		return err
	}
	defer closeDB()
	n, err := repo.DeleteFeed(context.Background(), name)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("no feed named %q", name)
	}
	return nil
}

func cmdArticles(args []string) error {
	fset := flag.NewFlagSet("articles", flag.ContinueOnError)
	var feedName string
	var num int
	fset.StringVar(&feedName, "feed-name", "", "feed name")
	fset.IntVar(&num, "num", 3, "number of articles")
	if err := fset.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(feedName) == "" {
		return fmt.Errorf("--feed-name is required")
	}
	repo, closeDB, err := openRepo()
	if err != nil {
		return err
	}
	defer closeDB()
	feed, err := repo.GetFeedByName(context.Background(), feedName)
	if err != nil {
		return err
	}
	arts, err := repo.ListArticlesByFeed(context.Background(), feed.ID, num)
	if err != nil {
		return err
	}
	fmt.Printf("Feed: %s\n\n", feed.Name)
	for i, a := range arts {
		fmt.Printf("%d. [%s] %s\n   %s\n", i+1, a.PublishedAt.Format("2006-01-02"), a.Title, a.Link)
		if a.Description != "" {
			fmt.Printf("   %s\n", a.Description)
		}
		fmt.Println()
	}
	return nil
}

func cmdSweep(args []string) error {
	c := control.NewClient(config.Load().ControlAddr)
	res, err := c.Sweep()
	if err != nil {
		return fmt.Errorf("is the sweeper running? %w", err)
	}
	fmt.Printf("Sweep finished: %d feeds considered, %d fetched\n", res.Feeds, res.Fetched)
	for _, o := range res.Outcomes {
		if o.Success {
			fmt.Printf("  %s: %d new of %d\n", o.FeedName, o.NewCount, o.Total)
		} else {
			fmt.Printf("  %s: FAILED: %s\n", o.FeedName, o.Error)
		}
	}
	if res.Error != "" {
		fmt.Printf("  sweep error: %s\n", res.Error)
	}
	return nil
}

func cmdLogs(args []string) error {
	fset := flag.NewFlagSet("logs", flag.ContinueOnError)
	var clear bool
	fset.BoolVar(&clear, "clear", false, "clear the operation log")
	if err := fset.Parse(args); err != nil {
		return err
	}
	c := control.NewClient(config.Load().ControlAddr)
	if clear {
		return c.ClearLogs()
	}
	entries, err := c.Logs()
	if err != nil {
		return fmt.Errorf("is the sweeper running? %w", err)
	}
	for _, e := range entries {
		fmt.Printf("%s [%s] %s %v\n", e.Timestamp.Format(time.RFC3339), e.Type, e.Action, e.Details)
	}
	return nil
}

func cmdSetInterval(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: feedsweep set-interval DURATION (e.g., 1m)")
	}
	d, err := time.ParseDuration(args[0])
	if err != nil {
		return fmt.Errorf("invalid duration: %w", err)
	}
	c := control.NewClient(config.Load().ControlAddr)
	old, err := c.SetInterval(d)
	if err != nil {
		return err
	}
	fmt.Printf("Sweep interval changed from %s to %s\n", old.String(), d.String())
	return nil
}

func cmdSetWorkers(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: feedsweep set-workers COUNT")
	}
	var n int
	_, err := fmt.Sscanf(args[0], "%d", &n)
	if err != nil || n <= 0 {
		return fmt.Errorf("invalid workers count: %v", args[0])
	}
	c := control.NewClient(config.Load().ControlAddr)
	old, err := c.SetWorkers(n)
	if err != nil {
		return err
	}
	fmt.Printf("Number of workers changed from %d to %d\n", old, n)
	return nil
}

func openRepo() (*postgres.Repository, func(), error) {
	cfg := config.Load()
	database, err := openDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	repo := postgres.New(database)
	if err := repo.Ensure(context.Background()); err != nil {
		database.Close()
		return nil, nil, err
	}
	return repo, func() { database.Close() }, nil
}

func openDB(cfg config.Config) (*sql.DB, error) {
	pgURL := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.PGUser, cfg.PGPassword, cfg.PGHost, cfg.PGPort, cfg.PGDatabase,
	)
	dbConn, err := sql.Open("postgres", pgURL)
	if err != nil {
		return nil, err
	}
	dbConn.SetMaxOpenConns(10)
	dbConn.SetMaxIdleConns(10)
	dbConn.SetConnMaxLifetime(30 * time.Minute)
	if err := dbConn.Ping(); err != nil {
		return nil, err
	}
	return dbConn, nil
}
