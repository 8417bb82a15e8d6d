package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/carterahq/cartera/internal/common"
	"github.com/carterahq/cartera/internal/importer"
	"github.com/carterahq/cartera/internal/ledger"
	"github.com/carterahq/cartera/internal/persist"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ECDC4"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	subtleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// app bundles the wired session: SQLite persister, outbox, store, controller.
type app struct {
	store      *ledger.Store
	controller *ledger.Controller
	sqlite     *persist.SQLiteStore
	outbox     *persist.Outbox
}

func openApp(ctx context.Context) (*app, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "cartera", "cartera.db")
	}

	sqlite, err := persist.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, err
	}
	if err := sqlite.Migrate(ctx); err != nil {
		_ = sqlite.Close()
		return nil, err
	}

	accounts, txns, goals, err := sqlite.LoadSnapshot(ctx)
	if err != nil {
		_ = sqlite.Close()
		return nil, err
	}

	store := ledger.NewStore()
	store.Load(accounts, txns, goals)

	outbox := persist.NewOutbox(sqlite, common.RetryOptions{MaxAttempts: 3})
	outbox.Start(ctx)

	return &app{
		store:      store,
		controller: ledger.NewController(store, outbox),
		sqlite:     sqlite,
		outbox:     outbox,
	}, nil
}

func (a *app) close() {
	a.outbox.Close()
	_ = a.sqlite.Close()
}

// importConfig builds the pipeline heuristics from configuration. Unset keys
// fall back to the compiled-in defaults.
func importConfig() importer.Config {
	cfg := importer.Config{
		DateToleranceDays:   viper.GetInt("import.date_tolerance_days"),
		SimilarityThreshold: viper.GetFloat64("import.similarity_threshold"),
	}
	if phrases := viper.GetStringSlice("import.card_payment_phrases"); len(phrases) > 0 {
		cfg.CardPaymentPhrases = phrases
	}
	if aliases := viper.GetStringMapString("import.category_aliases"); len(aliases) > 0 {
		cfg.CategoryAliases = aliases
	}
	return cfg
}

// formatMoney renders a decimal amount in the ledger currency.
func formatMoney(d decimal.Decimal) string {
	cents := d.Shift(2).Round(0).IntPart()
	return money.New(cents, money.EUR).Display()
}
