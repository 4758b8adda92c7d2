package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/meghashyamc/wheresthat-client/api"
	"github.com/spf13/cobra"
)

const browsePrompt = "[n]ext, [p]revious, [q]uit: "

func (a *app) newSearchCmd() *cobra.Command {
	var (
		page   int
		browse bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search indexed files",
		Long: `Searches the files the server has indexed, ten results per page.
With --browse, reads n/p/q from standard input to move between pages.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			if _, err := a.search.Search(cmd.Context(), query, page); err != nil {
				a.presenter.Error(err)
				return err
			}
			if !browse {
				return nil
			}
			return a.browse(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "page of results to show")
	cmd.Flags().BoolVarP(&browse, "browse", "b", false, "page through results interactively")

	return cmd
}

// browse turns pages on request. A turn past either end is a no-op and prints
// nothing.
func (a *app) browse(ctx context.Context, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, browsePrompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		var (
			page *api.SearchResultPage
			err  error
		)
		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "next":
			page, err = a.search.NextPage(ctx)
		case "p", "prev", "previous":
			page, err = a.search.PreviousPage(ctx)
		case "q", "quit":
			return nil
		default:
			continue
		}
		if err != nil {
			a.presenter.Error(err)
			continue
		}
		a.logger.Debug("page turned", "query", page.Query, "page", page.CurrentPage)
	}
}
