package importer

import "github.com/carterahq/cartera/internal/model"

// Validate flags candidates that cannot be committed: no parseable date, no
// resolvable non-zero amount, or an empty description after cleanup. Rows
// are annotated and reported, never corrected or dropped here.
func Validate(candidates []model.CandidateTransaction) ([]model.CandidateTransaction, []model.ValidationError) {
	var errs []model.ValidationError
	for i := range candidates {
		c := &candidates[i]
		code, ok := validate(c)
		if !ok {
			c.Invalid = true
			c.InvalidCode = code
			errs = append(errs, model.ValidationError{RowIndex: c.RowIndex, Code: code})
		}
	}
	return candidates, errs
}

func validate(c *model.CandidateTransaction) (model.ValidationCode, bool) {
	if !c.HasDate {
		return model.InvalidDate, false
	}
	if !c.HasAmount || c.Amount.IsZero() {
		return model.InvalidAmount, false
	}
	if c.Description == "" {
		return model.EmptyDescription, false
	}
	return "", true
}
