package cli

import (
	"fmt"

	"github.com/meghashyamc/wheresthat-client/history"
	"github.com/spf13/cobra"
)

const (
	historyPaths   = "paths"
	historyQueries = "queries"
)

func (a *app) newHistoryCmd() *cobra.Command {
	var clearHistory bool

	cmd := &cobra.Command{
		Use:       "history [paths|queries]",
		Short:     "Show recently indexed folders and recent search queries",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{historyPaths, historyQueries},
		RunE: func(cmd *cobra.Command, args []string) error {
			lists := a.historyLists(args)

			if clearHistory {
				for _, list := range lists {
					if err := list.Clear(); err != nil {
						return fmt.Errorf("could not clear %s history: %w", list.Name(), err)
					}
				}
				cmd.Println("History cleared.")
				return nil
			}

			for _, list := range lists {
				a.presenter.List(historyTitle(list), list.Load())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&clearHistory, "clear", false, "clear the selected history")

	return cmd
}

func (a *app) historyLists(args []string) []*history.List {
	if len(args) == 0 {
		return []*history.List{a.paths, a.queries}
	}
	if args[0] == historyPaths {
		return []*history.List{a.paths}
	}
	return []*history.List{a.queries}
}

func historyTitle(list *history.List) string {
	switch list.Name() {
	case history.PathsList:
		return "Recent folders"
	case history.QueriesList:
		return "Recent searches"
	default:
		return list.Name()
	}
}
