package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"text/tabwriter"
	"time"

	"memescout/internal/config"
	"memescout/internal/export"
	"memescout/internal/logging"
	"memescout/internal/metrics"
	"memescout/internal/pipeline"
	"memescout/internal/rank"
	"memescout/internal/store/history"
	"memescout/internal/xclient"
)

func main() {
	cmd := ""
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}
	switch cmd {
	case "init":
		cmdInit()
	case "discover":
		cmdDiscover()
	case "top":
		cmdTop()
	case "history":
		cmdHistory()
	default:
		printHelp()
	}
}

func printHelp() {
	fmt.Println("Usage: memescout <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  init        Create a config file at ./memescout.yaml")
	fmt.Println("  discover    Search terms, analyze creators, persist and export results")
	fmt.Println("  top         Show top accounts by latest engagement rate")
	fmt.Println("  history     Show engagement history for an account")
}

func cmdInit() {
	fs := flag.NewFlagSet("init", flag.ExitOnError)
	path := fs.String("path", "./memescout.yaml", "path to write config")
	_ = fs.Parse(os.Args[2:])
	if err := config.Save(*path, config.Default()); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	abs, _ := filepath.Abs(*path)
	fmt.Println("Config written to:", abs)
}

func cmdDiscover() {
	fs := flag.NewFlagSet("discover", flag.ExitOnError)
	cfgPath := fs.String("config", "./memescout.yaml", "config path")
	csvName := fs.String("csv", "", "CSV filename (default top_memers_<timestamp>.csv)")
	noExport := fs.Bool("no-export", false, "skip CSV export")
	_ = fs.Parse(os.Args[2:])

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	log := logging.New(os.Getenv("APP_ENV"))
	metrics.StartServer(cfg.Metrics.Addr)
	if cfg.Credentials.BearerToken == "" {
		fmt.Println("warning: missing X_BEARER_TOKEN; API calls will fail")
	}
	client := xclient.NewHTTPClient(cfg.Credentials.BearerToken)

	store, err := history.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	defer store.Close()

	p := pipeline.New(client, log, cfg.Pipeline.Workers, time.Duration(cfg.Pipeline.TermCooldownSeconds)*time.Second)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, derr := p.Discover(ctx, pipeline.Params{
		SearchTerms:     cfg.Search.Terms,
		MinFollowers:    cfg.Search.MinFollowers,
		MaxPerTerm:      cfg.Search.MaxPerTerm,
		PostsPerAccount: cfg.Search.PostsPerAccount,
	})
	ranked := rank.Rank(results)
	if len(ranked) == 0 {
		fmt.Println("No results found.")
		if derr != nil && !errors.Is(derr, context.Canceled) {
			os.Exit(1)
		}
		return
	}

	// Persist even when the run was aborted mid-way; fully analyzed accounts
	// are still worth keeping.
	capturedAt := time.Now().UTC()
	if serr := store.StoreBatch(context.Background(), ranked, capturedAt); serr != nil {
		metrics.DiscoveryErrors.Inc()
		log.Error().Err(serr).Msg("persisting results failed")
		fmt.Println("error:", serr)
		os.Exit(1)
	}

	fmt.Printf("\nTop %d Meme Creators:\n", min(10, len(ranked)))
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "handle\tfollowers\trate\tavg_likes\tavg_reposts")
	for i := 0; i < len(ranked) && i < 10; i++ {
		r := ranked[i]
		fmt.Fprintf(tw, "@%s\t%d\t%.2f\t%.2f\t%.2f\n",
			r.Account.Handle, r.Account.FollowersCount, r.Summary.EngagementRate, r.Summary.AvgLikes, r.Summary.AvgReposts)
	}
	_ = tw.Flush()

	if !*noExport {
		path, err := export.WriteCSV(ranked, capturedAt, cfg.Export.Dir, *csvName)
		if err != nil {
			fmt.Println("error:", err)
			os.Exit(1)
		}
		fmt.Println("Results exported to", path)
	}
}

func cmdTop() {
	fs := flag.NewFlagSet("top", flag.ExitOnError)
	cfgPath := fs.String("config", "./memescout.yaml", "config path")
	n := fs.Int("n", 10, "number of accounts")
	_ = fs.Parse(os.Args[2:])

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	store, err := history.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	defer store.Close()

	rows, err := store.TopN(context.Background(), *n)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "handle\tfollowers\trate\tcaptured_at")
	for _, r := range rows {
		fmt.Fprintf(tw, "@%s\t%d\t%.2f\t%s\n", r.Handle, r.FollowersCount, r.EngagementRate, r.CapturedAt.Format(time.RFC3339))
	}
	_ = tw.Flush()
}

func cmdHistory() {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	cfgPath := fs.String("config", "./memescout.yaml", "config path")
	account := fs.String("account", "", "account id")
	_ = fs.Parse(os.Args[2:])
	if *account == "" {
		fmt.Println("error: -account is required")
		os.Exit(1)
	}

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	store, err := history.Open(cfg.Storage.DBPath)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	defer store.Close()

	snaps, err := store.History(context.Background(), *account)
	if err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
	if len(snaps) == 0 {
		fmt.Println("No snapshots for account", *account)
		return
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "captured_at\tposts\trate\ttotal\tavg_likes\tavg_reposts\tavg_replies\tavg_quotes")
	for _, s := range snaps {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\t%d\t%.2f\t%.2f\t%.2f\t%.2f\n",
			s.CapturedAt.Format(time.RFC3339), s.Summary.PostsAnalyzed, s.Summary.EngagementRate,
			s.Summary.TotalEngagement, s.Summary.AvgLikes, s.Summary.AvgReposts, s.Summary.AvgReplies, s.Summary.AvgQuotes)
	}
	_ = tw.Flush()
}
