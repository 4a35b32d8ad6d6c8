package cli

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func newAccountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Account commands",
	}

	cmd.AddCommand(newAccountCreateCmd())
	cmd.AddCommand(newAccountListCmd())
	cmd.AddCommand(newAccountGetCmd())
	cmd.AddCommand(newAccountAmountCmd("credit", "Add funds to an account"))
	cmd.AddCommand(newAccountAmountCmd("debit", "Withdraw funds from an account"))
	cmd.AddCommand(newAccountOperationsCmd())

	return cmd
}

// parseID validates a positive integer argument
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", arg)
	}
	return id, nil
}

func newAccountCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create",
		Short: "Open a new account with a zero balance",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Account

			if err := client.Post("/api/v1/accounts", nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newAccountListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List your accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result []Account

			if err := client.Get("/api/v1/accounts", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newAccountGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <account-id>",
		Short: "Show an account balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var result Account
			if err := client.Get(fmt.Sprintf("/api/v1/accounts/%d", id), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newAccountAmountCmd(action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <account-id> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			// Parse locally so typos fail fast, but send the original text so
			// the server sees exactly what was typed
			if _, err := decimal.NewFromString(args[1]); err != nil {
				return fmt.Errorf("invalid amount %q", args[1])
			}

			req := map[string]string{"amount": args[1]}
			var result Account
			if err := client.Post(fmt.Sprintf("/api/v1/accounts/%d/%s", id, action), req, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}

func newAccountOperationsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "operations <account-id>",
		Short: "List the operations applied to an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var result []Operation
			if err := client.Get(fmt.Sprintf("/api/v1/accounts/%d/operations", id), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
