package analyzer

import (
	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
)

// AnalyzeInput holds the parameters for analyzing a sentence.
type AnalyzeInput struct {
	Text string
}

// Validate checks all fields. Empty or whitespace-only text is valid and
// analyzes to an empty result.
func (i AnalyzeInput) Validate() error {
	return nil
}

// SuggestionsInput holds the parameters for a suggestion query.
type SuggestionsInput struct {
	Words []string
	Mode  domain.SuggestionMode
}

// Validate checks all fields. An empty word list is valid and yields an
// empty result; only an unknown mode is rejected.
func (i SuggestionsInput) Validate() error {
	if !i.Mode.Valid() {
		return domain.NewValidationError("mode", "must be single or overlap")
	}
	return nil
}
