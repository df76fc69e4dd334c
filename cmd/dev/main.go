package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"os/signal"
	"syscall"
	"time"

	"playerscout/adapters/fixtures"
	"playerscout/adapters/statsapi"
	"playerscout/internal/analysis"
	"playerscout/internal/api"
	"playerscout/internal/backend"
	"playerscout/internal/config"
	"playerscout/internal/search"
	"playerscout/ports"
	"playerscout/ui"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:   "scout-dev",
		Short: "PlayerScout development tools",
	}

	rootCmd.AddCommand(
		newUpCmd(),
		newSmokeTestCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newUpCmd() *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "up",
		Short: "Run the fixtures backend and the web UI together",
		Long: `Run the statistics backend on FIXTURES_DIR and the web UI against it.

Templates and static assets are read from --root, so edits show up on restart
without rebuilding the embedded binary.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return runUp(cmd.Context(), cfg, root)
		},
	}

	cmd.Flags().StringVar(&root, "root", ".", "repository root holding ui/templates and ui/static")
	return cmd
}

func runUp(ctx context.Context, cfg *config.Config, root string) error {
	store, err := fixtures.LoadDir(cfg.Backend.FixturesDir)
	if err != nil {
		return err
	}
	var analyzer ports.OverviewAnalyzer
	if cfg.Backend.Analyze {
		analyzer = analysis.NewAnalyzer(nil)
	}
	backendSrv := backend.NewServer(store, analyzer, cfg.Backend.CORSOrigins)

	gin.SetMode(cfg.Server.GinMode)
	opts := workflowOptions(cfg)
	hub := api.NewSSEHub()
	sessions := api.NewSessions(statsapi.NewClient(cfg.Client.APIURL, &http.Client{}), opts, hub, cfg.Server.SessionTTL)
	defer sessions.Close()

	uiSrv, err := ui.NewServer(os.DirFS(root), sessions, hub)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return backendSrv.Start(ctx, cfg.Backend.Addr)
	})
	g.Go(func() error {
		return uiSrv.Start(ctx, ":"+cfg.Server.Port)
	})
	g.Go(func() error {
		sessions.RunJanitor(ctx, time.Minute)
		return nil
	})

	if err := g.Wait(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func workflowOptions(cfg *config.Config) search.Options {
	opts := search.DefaultOptions()
	opts.MinDisplay = cfg.Client.MinDisplay
	opts.RevealDelay = cfg.Client.RevealDelay
	opts.RequestTimeout = cfg.Client.RequestTimeout
	return opts
}

func newSmokeTestCmd() *cobra.Command {
	var concurrency int64

	cmd := &cobra.Command{
		Use:   "smoke [fixtures-dir]",
		Short: "Search every fixture player through an in-process backend",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "./fixtures"
			if len(args) == 1 {
				dir = args[0]
			}
			store, err := fixtures.LoadDir(dir)
			if err != nil {
				return err
			}

			srv := httptest.NewServer(backend.NewServer(store, analysis.NewAnalyzer(nil), nil).Handler())
			defer srv.Close()

			names := make([]string, 0)
			for _, r := range store.All() {
				names = append(names, r.GeneralInfo.Name)
			}

			results, err := runSmoke(cmd.Context(), statsapi.NewClient(srv.URL, srv.Client()), names, concurrency)
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				mark := "✓"
				if !r.OK() {
					mark = "✗"
					failed++
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %-24s %-10s rating=%d %s\n", mark, r.Query, r.Status, r.Rating, r.Error)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d smoke searches failed", failed, len(results))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "All %d smoke searches passed\n", len(results))
			return nil
		},
	}

	cmd.Flags().Int64Var(&concurrency, "concurrency", 4, "maximum concurrent searches")
	return cmd
}

type smokeResult struct {
	Query  string
	Status search.Status
	Found  string
	Rating int
	Error  string
}

// OK reports whether the search found the player it asked for and revealed an analysis
func (r smokeResult) OK() bool {
	return r.Status == search.StatusSucceeded && r.Found == r.Query && r.Rating > 0
}

// runSmoke drives one workflow per name through search and reveal, at most
// concurrency at a time. Results keep the order of names.
func runSmoke(ctx context.Context, lookup ports.PlayerLookup, names []string, concurrency int64) ([]smokeResult, error) {
	if concurrency < 1 {
		concurrency = 1
	}
	sem := semaphore.NewWeighted(concurrency)
	results := make([]smokeResult, len(names))

	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		g.Go(func() error {
			defer sem.Release(1)
			r, err := smokeOne(ctx, lookup, name)
			results[i] = r
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func smokeOne(ctx context.Context, lookup ports.PlayerLookup, name string) (smokeResult, error) {
	wf := search.NewWorkflow(lookup, search.Options{RequestTimeout: 10 * time.Second})
	defer wf.Close()

	result := smokeResult{Query: name}
	if !wf.Submit(name) {
		result.Error = "rejected"
		return result, nil
	}
	if err := wf.Wait(ctx); err != nil {
		return result, err
	}
	if wf.RevealAnalysis() {
		if err := wf.WaitAnalysis(ctx); err != nil {
			return result, err
		}
	}

	snap := wf.Snapshot()
	result.Status = snap.Status
	result.Error = snap.Error
	if snap.Record != nil {
		result.Found = snap.Record.GeneralInfo.Name
		if snap.AnalysisVisible() {
			result.Rating = snap.Record.PlayerOverview.OverallRating
		}
	}
	log.Printf("[Smoke] %q -> %s", name, snap.Status)
	return result, nil
}
