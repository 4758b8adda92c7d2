package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/meghashyamc/wheresthat-client/controller"
	"github.com/spf13/cobra"
)

var errIndexingCancelled = errors.New("indexing cancelled")

func (a *app) newIndexCmd() *cobra.Command {
	var excludeFolders []string

	cmd := &cobra.Command{
		Use:   "index [path]",
		Short: "Index the files under a folder",
		Long: `Submits a folder to the server for indexing and follows the job until it
finishes. Ctrl-C stops following the job.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return a.runIndex(ctx, args[0], excludeFolders)
		},
	}
	cmd.Flags().StringArrayVarP(&excludeFolders, "exclude", "e", nil, "folder under the indexed path to skip (repeatable)")

	return cmd
}

func (a *app) runIndex(ctx context.Context, path string, excludeFolders []string) error {
	if err := a.index.Start(ctx, path, excludeFolders...); err != nil {
		a.presenter.Error(err)
		return err
	}
	if err := a.index.Wait(ctx); err != nil {
		a.index.Cancel()
	}

	job := a.index.Job()
	switch job.State {
	case controller.JobSucceeded:
		return nil
	case controller.JobFailed:
		return errors.New(job.LastError)
	case controller.JobIdle:
		a.presenter.Error(errIndexingCancelled)
		return errIndexingCancelled
	default:
		a.index.Cancel()
		return errIndexingCancelled
	}
}
