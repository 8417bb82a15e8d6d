package importer

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/carterahq/cartera/internal/common"
	"github.com/carterahq/cartera/internal/ledger"
	"github.com/carterahq/cartera/internal/model"
)

// Step is one state of the import flow. Transitions are forward-only except
// through Back; Abandon resets the flow with no side effects as long as
// commit has not begun.
type Step string

// Import flow steps.
const (
	StepUpload         Step = "UPLOAD"
	StepTemplateSelect Step = "TEMPLATE_SELECT"
	StepAccountSelect  Step = "ACCOUNT_SELECT"
	StepColumnMapping  Step = "COLUMN_MAPPING"
	StepPreview        Step = "PREVIEW"
	StepDone           Step = "DONE"
)

// Config carries the tunable heuristics of the pipeline. Zero values select
// compiled-in defaults; callers usually populate this from configuration.
type Config struct {
	DateToleranceDays   int
	SimilarityThreshold float64
	CardPaymentPhrases  []string
	CategoryAliases     map[string]string
	Lexicon             []KeywordRule

	// OnRow, when set, is called after each row is processed into the
	// preview, for progress reporting.
	OnRow func(done, total int)
}

// Report is the full preview produced on entering the preview step, held in
// its entirety for display.
type Report struct {
	Candidates []model.CandidateTransaction
	Validation []model.ValidationError
	Duplicates []model.DuplicateMatch

	// Impact previews the regular subset with card-payment rows set aside.
	// Commit recomputes it over the exact committed set.
	Impact model.BalanceImpact
}

// CommitOptions control how accepted rows are committed.
type CommitOptions struct {
	// ExcludeDuplicates drops rows flagged by the duplicate detector.
	// Validation failures are always excluded.
	ExcludeDuplicates bool

	// CreditCardAccountID designates the credit account settled by
	// card-payment rows. When empty those rows import as plain expenses
	// rather than being dropped.
	CreditCardAccountID string
}

// CommitResult reports what a commit created.
type CommitResult struct {
	ImportedCount    int
	TransferredCount int
}

// Orchestrator drives the import flow end to end and is the only component
// that calls the ledger controller.
type Orchestrator struct {
	controller  *ledger.Controller
	categorizer *Categorizer
	classifier  *CardPaymentClassifier
	detector    *DuplicateDetector

	onRow func(done, total int)

	step            Step
	source          *Source
	accountID       string
	skippedAccounts bool
	mapping         model.ColumnMapping
	report          *Report
}

// NewOrchestrator creates an import flow over the given controller.
func NewOrchestrator(controller *ledger.Controller, cfg Config) *Orchestrator {
	return &Orchestrator{
		controller:  controller,
		categorizer: NewCategorizer(cfg.CategoryAliases, cfg.Lexicon),
		classifier:  NewCardPaymentClassifier(cfg.CardPaymentPhrases),
		detector:    NewDuplicateDetector(cfg.DateToleranceDays, cfg.SimilarityThreshold),
		onRow:       cfg.OnRow,
		step:        StepUpload,
	}
}

// Step returns the current flow state.
func (o *Orchestrator) Step() Step {
	return o.step
}

// Report returns the preview report, nil before the preview step.
func (o *Orchestrator) Report() *Report {
	return o.report
}

// Mapping returns the current column mapping.
func (o *Orchestrator) Mapping() model.ColumnMapping {
	return o.mapping
}

func (o *Orchestrator) expect(step Step) error {
	if o.step != step {
		return fmt.Errorf("%w: in %s, expected %s", common.ErrBadTransition, o.step, step)
	}
	return nil
}

// Upload accepts the parsed source file.
func (o *Orchestrator) Upload(src *Source) error {
	if err := o.expect(StepUpload); err != nil {
		return err
	}
	if src == nil || len(src.Rows) == 0 {
		return common.ErrEmptyFile
	}
	o.source = src
	o.step = StepTemplateSelect
	return nil
}

// SelectTemplate prefills the column mapping from a bank template. The
// account step is skipped automatically when only one account exists.
func (o *Orchestrator) SelectTemplate(t model.BankTemplate) error {
	if err := o.expect(StepTemplateSelect); err != nil {
		return err
	}
	o.mapping = t.Mapping()
	o.advanceToAccountSelect()
	return nil
}

// SelectMapping skips templates entirely and supplies a mapping directly
// (the OFX path and fully manual mapping both use this).
func (o *Orchestrator) SelectMapping(m model.ColumnMapping) error {
	if err := o.expect(StepTemplateSelect); err != nil {
		return err
	}
	o.mapping = m
	o.advanceToAccountSelect()
	return nil
}

func (o *Orchestrator) advanceToAccountSelect() {
	store := o.controller.Store()
	if store.AccountCount() == 1 {
		o.accountID = store.Accounts()[0].ID
		o.skippedAccounts = true
		o.step = StepColumnMapping
		return
	}
	o.skippedAccounts = false
	o.step = StepAccountSelect
}

// SelectAccount picks the account the import lands on.
func (o *Orchestrator) SelectAccount(id string) error {
	if err := o.expect(StepAccountSelect); err != nil {
		return err
	}
	if _, err := o.controller.Store().Account(id); err != nil {
		return err
	}
	o.accountID = id
	o.step = StepColumnMapping
	return nil
}

// SetMapping lets the user adjust the prefilled column mapping.
func (o *Orchestrator) SetMapping(m model.ColumnMapping) error {
	if err := o.expect(StepColumnMapping); err != nil {
		return err
	}
	o.mapping = m
	return nil
}

// ConfirmMapping validates the mapping and runs the pipeline into the
// preview step. A mapping without date and amount columns blocks here.
func (o *Orchestrator) ConfirmMapping() error {
	if err := o.expect(StepColumnMapping); err != nil {
		return err
	}
	if !o.mapping.Complete() {
		return common.NewUserError("map the date and amount columns before continuing", common.ErrMappingIncomplete)
	}
	if !o.hasHeader(o.mapping.Date) || !o.hasHeader(o.mapping.Amount) {
		return common.NewUserError("mapped date/amount columns are not present in the file", common.ErrMappingIncomplete)
	}

	o.report = o.buildReport()
	o.step = StepPreview
	return nil
}

func (o *Orchestrator) hasHeader(name string) bool {
	for _, h := range o.source.Headers {
		if h == name {
			return true
		}
	}
	return false
}

// buildReport runs normalize → categorize → card-payment classification →
// validate → duplicate detection → impact, in that order, over every row.
func (o *Orchestrator) buildReport() *Report {
	candidates := make([]model.CandidateTransaction, 0, len(o.source.Rows))
	for i, row := range o.source.Rows {
		c := NormalizeRow(row, o.mapping, i)
		o.categorizer.Categorize(&c, row, o.mapping)
		c.CardPayment = o.classifier.IsCardPayment(c.Description)
		candidates = append(candidates, c)
		if o.onRow != nil {
			o.onRow(i+1, len(o.source.Rows))
		}
	}

	candidates, validation := Validate(candidates)
	candidates, duplicates := o.detector.Detect(candidates, o.controller.Store().Transactions())

	report := &Report{
		Candidates: candidates,
		Validation: validation,
		Duplicates: duplicates,
	}
	report.Impact = o.previewImpact(CommitOptions{})

	slog.Info("Import preview built",
		"rows", len(candidates),
		"invalid", len(validation),
		"duplicates", len(duplicates))

	return report
}

// partition splits accepted candidates into regular rows and card-payment
// rows, applying the exclusion rules. Card-payment rows fall back to the
// regular set when no credit account is designated.
func (o *Orchestrator) partition(opts CommitOptions) (regular, card []model.CandidateTransaction) {
	for i := range o.report.Candidates {
		c := o.report.Candidates[i]
		if c.Invalid {
			continue
		}
		if opts.ExcludeDuplicates && c.IsDuplicate() {
			continue
		}
		if c.CardPayment && opts.CreditCardAccountID != "" {
			card = append(card, c)
			continue
		}
		regular = append(regular, c)
	}
	return regular, card
}

// previewImpact computes the balance impact for the exact regular subset a
// commit with these options would create. Preview and commit share this path
// so they cannot desynchronize.
func (o *Orchestrator) previewImpact(opts CommitOptions) model.BalanceImpact {
	var starting decimal.Decimal
	if acc, err := o.controller.Store().Account(o.accountID); err == nil {
		starting = acc.Balance
	}
	// At preview time card rows are set aside regardless of designation:
	// their balance effect arrives through the transfer, never the batch.
	regular, _ := o.partition(CommitOptions{
		ExcludeDuplicates:   opts.ExcludeDuplicates,
		CreditCardAccountID: "preview",
	})
	return ComputeImpact(starting, regular)
}

// ImpactFor previews the committed-set impact for specific commit options.
func (o *Orchestrator) ImpactFor(opts CommitOptions) (model.BalanceImpact, error) {
	if err := o.expect(StepPreview); err != nil {
		return model.BalanceImpact{}, err
	}
	acc, err := o.controller.Store().Account(o.accountID)
	if err != nil {
		return model.BalanceImpact{}, err
	}
	regular, _ := o.partition(opts)
	return ComputeImpact(acc.Balance, regular), nil
}

// Back steps the flow one state backwards, undoing nothing.
func (o *Orchestrator) Back() error {
	switch o.step {
	case StepTemplateSelect:
		o.step = StepUpload
	case StepAccountSelect:
		o.step = StepTemplateSelect
	case StepColumnMapping:
		if o.skippedAccounts {
			o.step = StepTemplateSelect
		} else {
			o.step = StepAccountSelect
		}
	case StepPreview:
		o.report = nil
		o.step = StepColumnMapping
	default:
		return fmt.Errorf("%w: cannot go back from %s", common.ErrBadTransition, o.step)
	}
	return nil
}

// Abandon resets the flow. It is side-effect-free at any state before
// commit; after commit there is nothing left to abandon.
func (o *Orchestrator) Abandon() {
	o.source = nil
	o.accountID = ""
	o.mapping = model.ColumnMapping{}
	o.report = nil
	o.step = StepUpload
}

// Commit converts accepted candidates into ledger records. Card-payment
// rows become transfers to the designated credit account (one per row);
// everything else is added as regular transactions, in row order, after the
// transfers. Rows excluded by validation are never committed.
func (o *Orchestrator) Commit(opts CommitOptions) (CommitResult, error) {
	if err := o.expect(StepPreview); err != nil {
		return CommitResult{}, err
	}

	store := o.controller.Store()
	if _, err := store.Account(o.accountID); err != nil {
		return CommitResult{}, err
	}
	if opts.CreditCardAccountID != "" {
		credit, err := store.Account(opts.CreditCardAccountID)
		if err != nil {
			return CommitResult{}, err
		}
		if credit.Kind != model.KindCredit {
			return CommitResult{}, fmt.Errorf("%w: account %s is not a credit account",
				common.ErrInvalidAccount, opts.CreditCardAccountID)
		}
		if opts.CreditCardAccountID == o.accountID {
			return CommitResult{}, fmt.Errorf("%w: card-payment rows cannot settle the import account itself",
				common.ErrInvalidAccount)
		}
	}

	regular, card := o.partition(opts)

	var result CommitResult
	for i := range card {
		c := &card[i]
		err := o.controller.Transfer(o.accountID, opts.CreditCardAccountID, c.Amount, c.Date, "", c.Description)
		if err != nil {
			return result, fmt.Errorf("card-payment row %d: %w", c.RowIndex, err)
		}
		result.TransferredCount++
	}

	for i := range regular {
		c := &regular[i]
		_, err := o.controller.AddTransaction(ledger.TransactionData{
			Type:        c.Type,
			Amount:      c.Amount,
			Date:        c.Date,
			Category:    c.Category,
			Subcategory: c.Subcategory,
			AccountID:   o.accountID,
			Description: c.Description,
		})
		if err != nil {
			return result, fmt.Errorf("row %d: %w", c.RowIndex, err)
		}
		result.ImportedCount++
	}

	o.step = StepDone

	slog.Info("Import committed",
		"account", o.accountID,
		"imported", result.ImportedCount,
		"transferred", result.TransferredCount)

	return result, nil
}
