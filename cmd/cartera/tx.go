package main

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/carterahq/cartera/internal/ledger"
	"github.com/carterahq/cartera/internal/model"
)

func txCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tx",
		Short: "Manage transactions",
	}
	cmd.AddCommand(txAddCmd())
	cmd.AddCommand(txEditCmd())
	cmd.AddCommand(txDeleteCmd())
	cmd.AddCommand(txListCmd())
	return cmd
}

type txFlags struct {
	account     string
	txType      string
	amount      string
	date        string
	category    string
	subcategory string
	description string
	frequency   string
	recurring   bool
}

func (f *txFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.account, "account", "", "owning account id")
	cmd.Flags().StringVar(&f.txType, "type", "EXPENSE", "INCOME or EXPENSE")
	cmd.Flags().StringVar(&f.amount, "amount", "", "amount (non-negative magnitude)")
	cmd.Flags().StringVar(&f.date, "date", time.Now().Format("2006-01-02"), "date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.category, "category", "Other", "category")
	cmd.Flags().StringVar(&f.subcategory, "subcategory", "", "subcategory")
	cmd.Flags().StringVar(&f.description, "desc", "", "description")
	cmd.Flags().StringVar(&f.frequency, "frequency", "", "recurrence frequency")
	cmd.Flags().BoolVar(&f.recurring, "recurring", false, "recurring transaction")
}

func txAddCmd() *cobra.Command {
	var flags txFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a transaction",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			amount, err := decimal.NewFromString(flags.amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", flags.amount, err)
			}
			date, err := time.Parse("2006-01-02", flags.date)
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", flags.date, err)
			}

			txn, err := app.controller.AddTransaction(ledger.TransactionData{
				Type:        model.TransactionType(flags.txType),
				Amount:      amount,
				Date:        date,
				Category:    flags.category,
				Subcategory: flags.subcategory,
				AccountID:   flags.account,
				Description: flags.description,
				Recurrence:  model.Recurrence{Frequency: flags.frequency, Recurring: flags.recurring},
			})
			if err != nil {
				return err
			}
			fmt.Printf("Added transaction %s\n", txn.ID)
			return nil
		},
	}
	flags.register(cmd)
	_ = cmd.MarkFlagRequired("account")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func txEditCmd() *cobra.Command {
	var flags txFlags
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a transaction; only changed flags are applied",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			existing, err := app.store.Transaction(args[0])
			if err != nil {
				return err
			}
			updated := *existing

			if cmd.Flags().Changed("account") {
				updated.AccountID = flags.account
			}
			if cmd.Flags().Changed("type") {
				updated.Type = model.TransactionType(flags.txType)
			}
			if cmd.Flags().Changed("amount") {
				amount, err := decimal.NewFromString(flags.amount)
				if err != nil {
					return fmt.Errorf("invalid amount %q: %w", flags.amount, err)
				}
				updated.Amount = amount
			}
			if cmd.Flags().Changed("date") {
				date, err := time.Parse("2006-01-02", flags.date)
				if err != nil {
					return fmt.Errorf("invalid date %q: %w", flags.date, err)
				}
				updated.Date = date
			}
			if cmd.Flags().Changed("category") {
				updated.Category = flags.category
			}
			if cmd.Flags().Changed("subcategory") {
				updated.Subcategory = flags.subcategory
			}
			if cmd.Flags().Changed("desc") {
				updated.Description = flags.description
			}
			if cmd.Flags().Changed("frequency") {
				updated.Recurrence.Frequency = flags.frequency
			}
			if cmd.Flags().Changed("recurring") {
				updated.Recurrence.Recurring = flags.recurring
			}

			if err := app.controller.EditTransaction(updated); err != nil {
				return err
			}
			fmt.Printf("Updated transaction %s\n", updated.ID)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func txDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a transaction, reversing its balance effect",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			if err := app.controller.DeleteTransaction(args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted transaction %s\n", args[0])
			return nil
		},
	}
}

func txListCmd() *cobra.Command {
	var account string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			var txns []model.Transaction
			if account != "" {
				txns = app.store.TransactionsForAccount(account)
			} else {
				txns = app.store.Transactions()
			}
			if len(txns) == 0 {
				fmt.Println(subtleStyle.Render("No transactions."))
				return nil
			}
			for _, t := range txns {
				sign := "+"
				if t.Type == model.TypeExpense {
					sign = "-"
				}
				fmt.Printf("%s  %s  %s%12s  %-16s %s\n",
					t.ID, t.Date.Format("2006-01-02"), sign, formatMoney(t.Amount), t.Category, t.Description)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&account, "account", "", "filter by account id")
	return cmd
}
