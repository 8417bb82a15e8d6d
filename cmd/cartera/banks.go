package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/carterahq/cartera/internal/bank"
)

func banksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "banks",
		Short: "List known bank statement templates",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Println(titleStyle.Render("Bank templates"))
			for _, t := range bank.List() {
				fmt.Printf("%-12s %-20s delimiter=%q date=%s\n", t.ID, t.Name, t.Delimiter, t.DateFormat)
			}
		},
	}
}
