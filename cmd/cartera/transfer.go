package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/carterahq/cartera/internal/common"
)

func transferCmd() *cobra.Command {
	var (
		from, to, goal, desc string
		amount, date         string
	)
	cmd := &cobra.Command{
		Use:   "transfer",
		Short: "Move money between accounts (two-leg transfer)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			value, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}
			when, err := time.Parse("2006-01-02", date)
			if err != nil {
				return fmt.Errorf("invalid date %q: %w", date, err)
			}

			if err := app.controller.Transfer(from, to, value, when, goal, desc); err != nil {
				return err
			}
			fmt.Printf("Transferred %s from %s to %s\n", formatMoney(value), from, to)
			return nil
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "source account id")
	cmd.Flags().StringVar(&to, "to", "", "destination account id")
	cmd.Flags().StringVar(&amount, "amount", "", "amount")
	cmd.Flags().StringVar(&date, "date", time.Now().Format("2006-01-02"), "date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&goal, "goal", "", "savings goal id credited by this transfer")
	cmd.Flags().StringVar(&desc, "desc", "", "description")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")
	return cmd
}

func settleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "settle <credit-account-id>",
		Short: "Settle a credit card's current cycle debt from its linked bank account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			if err := app.controller.SettleCreditCycle(args[0]); err != nil {
				var userErr *common.UserError
				if errors.As(err, &userErr) {
					fmt.Println(errorStyle.Render(userErr.UserMessage))
					return nil
				}
				return err
			}
			fmt.Println("Cycle settled.")
			return nil
		},
	}
}
