package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/orgscout/orgscout/config"
	"github.com/orgscout/orgscout/internal/cache"
	"github.com/orgscout/orgscout/internal/collect"
	"github.com/orgscout/orgscout/internal/constants"
	"github.com/orgscout/orgscout/internal/duration"
	"github.com/orgscout/orgscout/internal/log"
	"github.com/orgscout/orgscout/internal/org"
	"github.com/orgscout/orgscout/internal/report"
	"github.com/orgscout/orgscout/internal/scrape"
	"github.com/orgscout/orgscout/internal/urlutil"
)

// addAnalyzeFlags adds the analysis flags to a command.
func addAnalyzeFlags(cmd *cobra.Command, opts *Options) {
	cmd.Flags().StringVarP(&opts.Format, "output", "o", "", "Output format (table, json, html)")
	cmd.Flags().StringVarP(&opts.Since, "since", "s", "", "Activity window (e.g., 30d, 12mo, 1y, or 2025-01-15; default 12mo)")
	cmd.Flags().StringVar(&opts.HTMLOut, "html", "", "Also write an HTML report to this file")
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "Maximum table rows (default 15)")
	cmd.Flags().IntVar(&opts.DelayMS, "delay", 0, "Override request delay in milliseconds")
	cmd.Flags().BoolVar(&opts.NoCache, "no-cache", false, "Bypass the page cache")
	cmd.Flags().BoolVar(&opts.FailFast, "fail-fast", false, "Stop at the first failing target")
	cmd.Flags().CountVarP(&opts.Verbosity, "verbose", "v", "Increase verbosity (-v info, -vv debug, -vvv trace)")
}

func runAnalyze(cmd *cobra.Command, args []string, opts *Options) error {
	log.Initialize(opts.Verbosity, os.Stderr)

	targets := make([]urlutil.Target, 0, len(args))
	for _, arg := range args {
		target, err := urlutil.ParseTarget(arg)
		if err != nil {
			return err
		}
		targets = append(targets, target)
	}

	since, err := resolveSince(opts.Since)
	if err != nil {
		return err
	}
	log.Info("activity window", "since", since.Format("2006-01-02"))

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	settings := cfg.GetSettings()
	if opts.DelayMS > 0 {
		settings.Delay = time.Duration(opts.DelayMS) * time.Millisecond
	}

	var store *cache.Store
	if !opts.NoCache {
		path := settings.CachePath
		if path == "" {
			if path, err = cache.DefaultPath(); err != nil {
				return fmt.Errorf("failed to locate cache directory: %w", err)
			}
		}
		if store, err = cache.Open(path, settings.CacheTTL); err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
	}

	client := scrape.NewClient(scrape.Config{
		Cache:       store,
		Delay:       settings.Delay,
		Jitter:      settings.Jitter,
		MaxAttempts: settings.MaxRetries,
		OnRetry: func(attempt int, err error) {
			log.Debug("fetch attempt failed", "attempt", attempt, "error", err)
		},
	})

	detector := org.NewDetector(settings.Aliases, settings.BlockedDomains)
	orchestrator := collect.NewOrchestrator(client, detector)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var runs []report.RepoRun
	for _, target := range targets {
		bar := newProgressBar(target.FullName())
		progress := func(stage string, current, total int) {
			if bar == nil {
				return
			}
			if total > 0 {
				bar.ChangeMax(total)
			}
			bar.Describe(fmt.Sprintf("%s %s", target.FullName(), stage))
			_ = bar.Set(current)
		}

		var result *collect.Result
		if target.IsPull() {
			result, err = orchestrator.CollectPullRequest(ctx, target.Owner, target.Repo, target.Number,
				collect.Options{Since: since, OnProgress: progress})
		} else {
			result, err = orchestrator.CollectRepository(ctx, target.Owner, target.Repo,
				collect.Options{Since: since, OnProgress: progress})
		}
		finishProgressBar(bar)

		if err != nil {
			if opts.FailFast || len(targets) == 1 {
				return fmt.Errorf("analyzing %s: %w", target.URL(), err)
			}
			log.Error("target failed", "target", target.URL(), "error", err)
			continue
		}
		if result.Aborted {
			log.Warn("collection interrupted, results are partial", "target", target.FullName())
		}

		runs = append(runs, report.RepoRun{
			Repo:         target.FullName(),
			Contributors: result.Contributors,
		})
		log.Info("target complete",
			"target", target.FullName(),
			"contributors", result.Stats.UniqueContributors)

		if result.Aborted {
			break
		}
	}

	if len(runs) == 0 {
		return fmt.Errorf("no targets could be analyzed")
	}

	rep := report.Generate(runs)

	format := opts.Format
	if format == "" {
		format = cfg.DefaultFormat
	}
	formatter := report.NewFormatter(report.Format(format))
	if table, ok := formatter.(*report.TableFormatter); ok {
		table.Limit = opts.Limit
	}
	if err := formatter.Format(rep, os.Stdout); err != nil {
		return err
	}

	if opts.HTMLOut != "" {
		if err := writeHTMLReport(rep, opts.HTMLOut); err != nil {
			return err
		}
		log.Info("html report written", "path", opts.HTMLOut)
	}

	if store != nil {
		session := store.Session()
		log.Info("cache session", "hits", session.Hits, "misses", session.Misses)
	}

	return nil
}

// resolveSince parses the --since value, defaulting to the standard
// activity window.
func resolveSince(since string) (time.Time, error) {
	if since == "" {
		return duration.Parse(fmt.Sprintf("%dmo", constants.DefaultWindowMonths))
	}
	return duration.ParseSince(since)
}

// newProgressBar builds a per-target spinner, or nil when stderr is not
// a terminal (CI logs stay clean).
func newProgressBar(name string) *progressbar.ProgressBar {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return nil
	}
	return progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription(name),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func finishProgressBar(bar *progressbar.ProgressBar) {
	if bar == nil {
		return
	}
	_ = bar.Finish()
	fmt.Fprintln(os.Stderr)
}

// writeHTMLReport renders the report to a standalone HTML file.
func writeHTMLReport(rep report.Report, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create html report: %w", err)
	}
	defer func() { _ = f.Close() }()

	formatter := &report.HTMLFormatter{}
	if err := formatter.Format(rep, f); err != nil {
		return fmt.Errorf("failed to render html report: %w", err)
	}
	return nil
}
