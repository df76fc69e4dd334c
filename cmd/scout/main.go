package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"playerscout/adapters/statsapi"
	"playerscout/domain/scouting"
	"playerscout/internal/config"
	"playerscout/internal/search"
	"playerscout/internal/view"
	"playerscout/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// errSearchFailed exits non-zero after the failure has already been printed
var errSearchFailed = stderrors.New("search failed")

func main() {
	// .env is optional for the CLI
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:           "scout",
		Short:         "Look up football players and their scouting reports",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newSearchCmd(),
		newREPLCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if !stderrors.Is(err, errSearchFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

// newWorkflow builds a workflow against the configured statistics service
func newWorkflow(cmd *cobra.Command, minDisplay time.Duration) (*search.Workflow, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	opts := search.DefaultOptions()
	opts.MinDisplay = cfg.Client.MinDisplay
	opts.RevealDelay = cfg.Client.RevealDelay
	opts.RequestTimeout = cfg.Client.RequestTimeout
	if cmd.Flags().Changed("min-display") {
		opts.MinDisplay = minDisplay
	}

	var lookup ports.PlayerLookup = statsapi.NewClient(cfg.Client.APIURL, &http.Client{})
	return search.NewWorkflow(lookup, opts), nil
}

func newSearchCmd() *cobra.Command {
	var analyze bool
	var asJSON bool
	var minDisplay time.Duration

	cmd := &cobra.Command{
		Use:   "search <name...>",
		Short: "Search for one player and print the result",
		Long: `Search for a player by name and print the best match.

Example: scout search riqui puig --analyze`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := newWorkflow(cmd, minDisplay)
			if err != nil {
				return err
			}
			defer wf.Close()

			snap, err := runSearch(cmd.Context(), wf, strings.Join(args, " "), analyze)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(snap); err != nil {
					return err
				}
			} else if err := view.RenderText(out, view.Build(snap, scouting.DefaultTaxonomy)); err != nil {
				return err
			}

			if snap.Status == search.StatusFailed {
				return errSearchFailed
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&analyze, "analyze", false, "reveal the analysis when the result carries one")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the workflow snapshot as JSON")
	cmd.Flags().DurationVar(&minDisplay, "min-display", 0, "minimum time a search stays pending (default SCOUT_MIN_DISPLAY)")
	return cmd
}

// runSearch submits query, waits for it to settle and optionally reveals the analysis
func runSearch(ctx context.Context, wf *search.Workflow, query string, analyze bool) (search.Snapshot, error) {
	if !wf.Submit(query) {
		return search.Snapshot{}, fmt.Errorf("enter a player name to search")
	}
	if err := wf.Wait(ctx); err != nil {
		return search.Snapshot{}, err
	}

	if analyze {
		if wf.RevealAnalysis() {
			if err := wf.WaitAnalysis(ctx); err != nil {
				return search.Snapshot{}, err
			}
		} else if wf.Snapshot().Status == search.StatusSucceeded {
			log.Printf("[Scout] No analysis available for %q", query)
		}
	}
	return wf.Snapshot(), nil
}

