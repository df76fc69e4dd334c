package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"playerscout/domain/scouting"
	"playerscout/internal/search"
	"playerscout/internal/view"

	"github.com/spf13/cobra"
)

const replHelp = `Commands:
  search <name>  look up a player
  analyze        reveal the analysis for the current result
  clear          cancel or reset the current search
  status         print the current view
  quit           leave the session
`

func newREPLCmd() *cobra.Command {
	var minDisplay time.Duration

	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive search session",
		RunE: func(cmd *cobra.Command, args []string) error {
			wf, err := newWorkflow(cmd, minDisplay)
			if err != nil {
				return err
			}
			defer wf.Close()

			return runREPL(cmd.Context(), wf, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().DurationVar(&minDisplay, "min-display", 0, "minimum time a search stays pending (default SCOUT_MIN_DISPLAY)")
	return cmd
}

// console serializes prompt output with transitions arriving from the workflow
type console struct {
	mu  sync.Mutex
	out io.Writer
}

func (c *console) printf(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

func (c *console) render(snap search.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = view.RenderText(c.out, view.Build(snap, scouting.DefaultTaxonomy))
}

// onChange prints each transition as it arrives
func (c *console) onChange(snap search.Snapshot) {
	switch {
	case snap.Status == search.StatusIdle:
		c.printf("Cleared.\n")
	case snap.Status == search.StatusPending:
		c.printf("Searching for %q...\n", snap.Query)
	case snap.Analysis == search.AnalysisRevealing:
		c.printf("Loading analysis...\n")
	default:
		c.render(snap)
	}
}

// runREPL reads commands from in until quit, EOF or ctx is done
func runREPL(ctx context.Context, wf *search.Workflow, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := &console{out: out}
	wf.OnChange(c.onChange)

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
		close(lines)
	}()

	c.printf("%s", replHelp)
	for {
		var line string
		var ok bool
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
			if !ok {
				return <-scanErr
			}
		}

		command, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
		switch strings.ToLower(command) {
		case "":
		case "search":
			if search.NormalizeQuery(rest) == "" {
				c.printf("Enter a player name to search.\n")
			} else if !wf.Submit(rest) {
				c.printf("A search is already pending; clear it first.\n")
			}
		case "analyze":
			if !wf.RevealAnalysis() {
				c.printf("No analysis available for the current result.\n")
			}
		case "clear":
			wf.Clear()
		case "status":
			c.render(wf.Snapshot())
		case "quit", "exit":
			return nil
		case "help":
			c.printf("%s", replHelp)
		default:
			c.printf("Unknown command %q. Type help for the list.\n", command)
		}
	}
}
