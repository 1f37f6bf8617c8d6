package main

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/osirenko/finch/internal/derive"
	"github.com/osirenko/finch/internal/tui"
	"github.com/osirenko/finch/internal/urlsync"
)

func browseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Browse transactions interactively",
		Long: `Open the terminal UI over your transactions. The --view flag
accepts a saved view query string (as printed by a previous session),
so filters and grouping can be shared and restored.`,
		RunE: runBrowse,
	}

	cmd.Flags().String("view", "", "view query string, e.g. \"categories=food,gas&groupBy=month\"")

	return cmd
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	viewQuery, _ := cmd.Flags().GetString("view")
	params, err := url.ParseQuery(viewQuery)
	if err != nil {
		return fmt.Errorf("invalid view query: %w", err)
	}

	s, c := newSession(params)
	defer s.Close()

	engine := derive.NewEngine(s)

	// Mirror the filter state into a history cell so the session's final
	// view is reproducible.
	history := urlsync.NewMemoryHistory(viewQuery)
	sync := urlsync.New(s, history)
	sync.Start()
	defer sync.Stop()

	if err := tui.Run(cmd.Context(), s, engine, c); err != nil {
		return err
	}

	if q := history.Current(); q != "" && q != viewQuery {
		fmt.Printf("view: %s\n", q)
	}
	return nil
}
