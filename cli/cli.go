// Package cli is the command-line front end: it wires the controllers to a
// console presenter and exposes them as cobra commands.
package cli

import (
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/meghashyamc/wheresthat-client/api"
	"github.com/meghashyamc/wheresthat-client/controller"
	"github.com/meghashyamc/wheresthat-client/history"
	"github.com/meghashyamc/wheresthat-client/logger"
	"github.com/meghashyamc/wheresthat-client/validation"
	"github.com/spf13/cobra"
)

type Dependencies struct {
	Logger       logger.Logger
	Client       *api.Client
	Validator    *validation.Validator
	Paths        *history.List
	Queries      *history.List
	PollInterval time.Duration
}

type app struct {
	logger    logger.Logger
	client    *api.Client
	paths     *history.List
	queries   *history.List
	presenter *Presenter
	index     *controller.IndexJobController
	search    *controller.SearchController
}

// NewRootCommand builds the wheresthat command tree. Everything the commands
// print goes to out.
func NewRootCommand(deps Dependencies, out io.Writer) *cobra.Command {
	presenter := NewPresenter(out)
	a := &app{
		logger:    deps.Logger,
		client:    deps.Client,
		paths:     deps.Paths,
		queries:   deps.Queries,
		presenter: presenter,
		index:     controller.NewIndexJobController(deps.Logger, deps.Client, deps.Validator, deps.Paths, presenter, deps.PollInterval),
		search:    controller.NewSearchController(deps.Logger, deps.Client, deps.Validator, deps.Queries, presenter),
	}

	var noColor bool
	rootCmd := &cobra.Command{
		Use:   "wheresthat",
		Short: "Index folders and search their files through a wheresthat server",
		Long: `wheresthat talks to a wheresthat server: it submits folders for indexing,
follows the indexing job until it finishes and searches the indexed files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable coloured output")

	rootCmd.AddCommand(
		a.newIndexCmd(),
		a.newSearchCmd(),
		a.newHistoryCmd(),
		a.newHealthCmd(),
	)

	return rootCmd
}
