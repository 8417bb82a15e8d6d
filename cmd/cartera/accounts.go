package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/carterahq/cartera/internal/model"
)

func accountsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage accounts",
	}
	cmd.AddCommand(accountsListCmd())
	cmd.AddCommand(accountsAddCmd())
	return cmd
}

func accountsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List accounts with balances",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			accounts := app.store.Accounts()
			if len(accounts) == 0 {
				fmt.Println(subtleStyle.Render("No accounts yet. Create one with: cartera accounts add"))
				return nil
			}
			fmt.Println(titleStyle.Render("Accounts"))
			for _, a := range accounts {
				line := fmt.Sprintf("%-36s  %-12s %-10s %12s", a.ID, a.Name, a.Kind, formatMoney(a.Balance))
				if a.Kind == model.KindCredit {
					line += fmt.Sprintf("  (cycle debt %s)", formatMoney(a.StatementBalance))
				}
				fmt.Println(line)
			}
			return nil
		},
	}
}

func accountsAddCmd() *cobra.Command {
	var (
		name, kind, mode, linked string
		balance, creditLimit     string
		cutoffDay, paymentDay    int
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			bal, err := decimal.NewFromString(balance)
			if err != nil {
				return fmt.Errorf("invalid balance %q: %w", balance, err)
			}
			limit, err := decimal.NewFromString(creditLimit)
			if err != nil {
				return fmt.Errorf("invalid credit limit %q: %w", creditLimit, err)
			}

			acc, err := app.store.AddAccount(model.Account{
				ID:              uuid.NewString(),
				Name:            name,
				Kind:            model.AccountKind(kind),
				Balance:         bal,
				CreditLimit:     limit,
				CutoffDay:       cutoffDay,
				PaymentDay:      paymentDay,
				PaymentMode:     model.PaymentMode(mode),
				LinkedAccountID: linked,
			})
			if err != nil {
				return err
			}
			app.outbox.RecordAccount(*acc)
			fmt.Printf("Created account %s (%s)\n", acc.Name, acc.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&kind, "kind", "bank", "kind (bank, cash, investment, wallet, asset, debit-proxy, credit)")
	cmd.Flags().StringVar(&balance, "balance", "0", "starting balance")
	cmd.Flags().StringVar(&creditLimit, "limit", "0", "credit limit (credit accounts)")
	cmd.Flags().IntVar(&cutoffDay, "cutoff-day", 0, "statement cutoff day of month (credit accounts)")
	cmd.Flags().IntVar(&paymentDay, "payment-day", 0, "payment day of month (credit accounts)")
	cmd.Flags().StringVar(&mode, "payment-mode", "", "payment mode: full or revolving (credit accounts)")
	cmd.Flags().StringVar(&linked, "linked", "", "linked account id (debit-proxy and credit accounts)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func goalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "goals",
		Short: "Manage savings goals",
	}

	var name, target string
	add := &cobra.Command{
		Use:   "add",
		Short: "Create a savings goal",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			t, err := decimal.NewFromString(target)
			if err != nil {
				return fmt.Errorf("invalid target %q: %w", target, err)
			}
			goal, err := app.store.AddGoal(model.Goal{ID: uuid.NewString(), Name: name, Target: t})
			if err != nil {
				return err
			}
			app.outbox.RecordGoal(*goal)
			fmt.Printf("Created goal %s (%s)\n", goal.Name, goal.ID)
			return nil
		},
	}
	add.Flags().StringVar(&name, "name", "", "goal name")
	add.Flags().StringVar(&target, "target", "0", "target amount")
	_ = add.MarkFlagRequired("name")
	cmd.AddCommand(add)

	return cmd
}
