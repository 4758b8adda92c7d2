package cli

import (
	"github.com/spf13/cobra"
)

func (a *app) newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the server is reachable",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.client.Health(cmd.Context()); err != nil {
				a.presenter.Error(err)
				return err
			}
			a.presenter.success.Fprintf(cmd.OutOrStdout(), "Server at %s is healthy\n", a.client.BaseURL())
			return nil
		},
	}
}
