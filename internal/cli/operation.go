package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newOperationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "operation",
		Short: "Operation log commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <operation-id>",
		Short: "Show a single operation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var result Operation
			if err := client.Get(fmt.Sprintf("/api/v1/operations/%d", id), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	})

	return cmd
}

func newActionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "actions",
		Short: "List your audited actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Action

			if err := client.Get("/api/v1/actions", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
