package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/carterahq/cartera/internal/bank"
	"github.com/carterahq/cartera/internal/importer"
	"github.com/carterahq/cartera/internal/model"
)

func importCmd() *cobra.Command {
	var (
		bankID, accountID, creditCardID string
		dateCol, amountCol, descCol     string
		excludeDuplicates, commit       bool
	)
	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a bank statement (CSV, XLS, OFX/QFX)",
		Long: `Runs the reconciliation pipeline over a statement export: normalize rows,
categorize, flag credit-card settlement lines, validate, detect duplicates
and preview the balance impact. Without --commit nothing is written.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer app.close()

			path := args[0]
			isOFX := false
			switch strings.ToLower(filepath.Ext(path)) {
			case ".ofx", ".qfx":
				isOFX = true
			}

			var template model.BankTemplate
			if !isOFX {
				if template, err = bank.Lookup(bankID); err != nil {
					return err
				}
			}

			src, err := importer.ReadFile(path, template.Delimiter)
			if err != nil {
				return err
			}

			var bar *progressbar.ProgressBar
			cfg := importConfig()
			cfg.OnRow = func(done, total int) {
				if bar == nil {
					bar = progressbar.Default(int64(total), "processing rows")
				}
				_ = bar.Set(done)
			}

			orch := importer.NewOrchestrator(app.controller, cfg)
			if err := orch.Upload(src); err != nil {
				return err
			}

			if isOFX {
				err = orch.SelectMapping(importer.OFXMapping())
			} else {
				err = orch.SelectTemplate(template)
			}
			if err != nil {
				return err
			}

			if orch.Step() == importer.StepAccountSelect {
				if accountID == "" {
					return fmt.Errorf("multiple accounts exist; pass --account")
				}
				if err := orch.SelectAccount(accountID); err != nil {
					return err
				}
			}

			if dateCol != "" || amountCol != "" || descCol != "" {
				m := orch.Mapping()
				if dateCol != "" {
					m.Date = dateCol
				}
				if amountCol != "" {
					m.Amount = amountCol
				}
				if descCol != "" {
					m.Description = descCol
				}
				if err := orch.SetMapping(m); err != nil {
					return err
				}
			}

			if err := orch.ConfirmMapping(); err != nil {
				return err
			}
			if bar != nil {
				_ = bar.Finish()
				fmt.Println()
			}

			opts := importer.CommitOptions{
				ExcludeDuplicates:   excludeDuplicates,
				CreditCardAccountID: creditCardID,
			}
			renderReport(orch.Report())

			impact, err := orch.ImpactFor(opts)
			if err != nil {
				return err
			}
			renderImpact(impact)

			if !commit {
				fmt.Println(subtleStyle.Render("Dry run. Re-run with --commit to apply."))
				orch.Abandon()
				return nil
			}

			result, err := orch.Commit(opts)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d transactions, rerouted %d card payments as transfers.\n",
				result.ImportedCount, result.TransferredCount)
			return nil
		},
	}
	cmd.Flags().StringVar(&bankID, "bank", "generic", "bank template id (see: cartera banks)")
	cmd.Flags().StringVar(&accountID, "account", "", "account to import into")
	cmd.Flags().StringVar(&creditCardID, "credit-card", "", "credit account settled by card-payment rows")
	cmd.Flags().StringVar(&dateCol, "date-col", "", "override the date column header")
	cmd.Flags().StringVar(&amountCol, "amount-col", "", "override the amount column header")
	cmd.Flags().StringVar(&descCol, "desc-col", "", "override the description column header")
	cmd.Flags().BoolVar(&excludeDuplicates, "exclude-duplicates", false, "skip rows flagged as duplicates")
	cmd.Flags().BoolVar(&commit, "commit", false, "apply the import instead of previewing")
	return cmd
}

func renderReport(report *importer.Report) {
	fmt.Println(titleStyle.Render("Import preview"))
	fmt.Printf("Rows: %d  invalid: %d  duplicates: %d\n",
		len(report.Candidates), len(report.Validation), len(report.Duplicates))

	for _, v := range report.Validation {
		fmt.Println(errorStyle.Render(fmt.Sprintf("  row %d excluded: %s", v.RowIndex, v.Code)))
	}
	for _, d := range report.Duplicates {
		if len(d.ExistingIDs) > 0 {
			fmt.Println(warningStyle.Render(fmt.Sprintf("  row %d may duplicate %d existing transaction(s)", d.RowIndex, len(d.ExistingIDs))))
		} else {
			fmt.Println(warningStyle.Render(fmt.Sprintf("  row %d may duplicate row %d in this file", d.RowIndex, d.BatchRow)))
		}
	}
	for i := range report.Candidates {
		c := &report.Candidates[i]
		if c.CardPayment {
			fmt.Println(warningStyle.Render(fmt.Sprintf("  row %d looks like a credit-card payment (%s)", c.RowIndex, c.Description)))
		}
		if c.AutoCategorized {
			fmt.Println(subtleStyle.Render(fmt.Sprintf("  row %d auto-categorized as %s", c.RowIndex, c.Category)))
		}
	}
}

func renderImpact(impact model.BalanceImpact) {
	fmt.Println(titleStyle.Render("Balance impact"))
	fmt.Printf("  income   %12s\n", formatMoney(impact.TotalIncome))
	fmt.Printf("  expense  %12s\n", formatMoney(impact.TotalExpense))
	fmt.Printf("  net      %12s\n", formatMoney(impact.Net))
	fmt.Printf("  balance  %12s -> %s\n", formatMoney(impact.StartingBalance), formatMoney(impact.ProjectedBalance))
	if len(impact.ByCategory) > 0 {
		fmt.Println(subtleStyle.Render("  by category:"))
		for category, total := range impact.ByCategory {
			fmt.Printf("    %-18s %12s\n", category, formatMoney(total))
		}
	}
}
