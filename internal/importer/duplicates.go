package importer

import (
	"strings"
	"time"

	"github.com/carterahq/cartera/internal/model"
)

// Duplicate detection defaults. Bank exports are frequently re-imported
// after partial imports, so matching is intentionally permissive: a flagged
// non-duplicate is cheaper for the user than a missed one.
const (
	DefaultDateTolerance       = 3 // days
	DefaultSimilarityThreshold = 0.55
)

// DuplicateDetector flags candidates that plausibly repeat an existing
// transaction or an earlier row of the same batch. Matches are advisory;
// nothing is removed or merged.
type DuplicateDetector struct {
	dateTolerance time.Duration
	threshold     float64
}

// NewDuplicateDetector builds a detector with the given tolerance in days
// and token-overlap threshold. Non-positive arguments select the defaults.
func NewDuplicateDetector(toleranceDays int, threshold float64) *DuplicateDetector {
	if toleranceDays <= 0 {
		toleranceDays = DefaultDateTolerance
	}
	if threshold <= 0 {
		threshold = DefaultSimilarityThreshold
	}
	return &DuplicateDetector{
		dateTolerance: time.Duration(toleranceDays) * 24 * time.Hour,
		threshold:     threshold,
	}
}

// Detect annotates candidates and returns the advisory match report.
// Candidates are compared against the existing ledger and against earlier
// candidates in the same batch.
func (d *DuplicateDetector) Detect(candidates []model.CandidateTransaction, existing []model.Transaction) ([]model.CandidateTransaction, []model.DuplicateMatch) {
	var matches []model.DuplicateMatch
	for i := range candidates {
		c := &candidates[i]
		if !c.HasDate || !c.HasAmount {
			continue
		}

		var existingIDs []string
		for j := range existing {
			if d.matchesExisting(c, &existing[j]) {
				existingIDs = append(existingIDs, existing[j].ID)
			}
		}

		batchRow := -1
		for j := 0; j < i; j++ {
			if d.matchesCandidate(c, &candidates[j]) {
				batchRow = candidates[j].RowIndex
				break
			}
		}

		if len(existingIDs) > 0 || batchRow >= 0 {
			c.DuplicateOf = existingIDs
			c.DuplicateRow = batchRow
			matches = append(matches, model.DuplicateMatch{
				RowIndex:    c.RowIndex,
				ExistingIDs: existingIDs,
				BatchRow:    batchRow,
			})
		}
	}
	return candidates, matches
}

func (d *DuplicateDetector) matchesExisting(c *model.CandidateTransaction, t *model.Transaction) bool {
	if c.Type != t.Type || !c.Amount.Equal(t.Amount) {
		return false
	}
	if !withinTolerance(c.Date, t.Date, d.dateTolerance) {
		return false
	}
	return d.similar(c.Description, t.Description)
}

func (d *DuplicateDetector) matchesCandidate(c, other *model.CandidateTransaction) bool {
	if !other.HasDate || !other.HasAmount {
		return false
	}
	if c.Type != other.Type || !c.Amount.Equal(other.Amount) {
		return false
	}
	if !withinTolerance(c.Date, other.Date, d.dateTolerance) {
		return false
	}
	return d.similar(c.Description, other.Description)
}

func withinTolerance(a, b time.Time, tolerance time.Duration) bool {
	diff := a.Sub(b)
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

// similar combines a case-insensitive substring check with normalized-token
// overlap (Jaccard) against the threshold.
func (d *DuplicateDetector) similar(a, b string) bool {
	na, nb := strings.ToUpper(strings.TrimSpace(a)), strings.ToUpper(strings.TrimSpace(b))
	if na == "" || nb == "" {
		return na == nb
	}
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return true
	}
	return tokenOverlap(na, nb) >= d.threshold
}

func tokenOverlap(a, b string) float64 {
	ta, tb := tokenize(a), tokenize(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]bool, len(ta))
	for _, t := range ta {
		set[t] = true
	}
	shared := 0
	union := len(set)
	seen := make(map[string]bool, len(tb))
	for _, t := range tb {
		if seen[t] {
			continue
		}
		seen[t] = true
		if set[t] {
			shared++
		} else {
			union++
		}
	}
	return float64(shared) / float64(union)
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r >= 0x80)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 1 {
			out = append(out, f)
		}
	}
	return out
}
