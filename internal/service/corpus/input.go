package corpus

import (
	"strings"

	"github.com/google/uuid"

	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
)

// AddSentenceInput holds the parameters for appending a personal sentence.
type AddSentenceInput struct {
	Text string
}

// Validate checks all fields and collects all errors. The length limit is
// enforced separately by the service because it comes from configuration.
func (i AddSentenceInput) Validate() error {
	if strings.TrimSpace(i.Text) == "" {
		return domain.NewValidationError("text", "required")
	}
	return nil
}

// DeleteSentenceInput holds the parameters for deleting a personal sentence.
type DeleteSentenceInput struct {
	SentenceID uuid.UUID
}

// Validate checks all fields and collects all errors.
func (i DeleteSentenceInput) Validate() error {
	if i.SentenceID == uuid.Nil {
		return domain.NewValidationError("sentence_id", "required")
	}
	return nil
}

// DeleteEntryInput holds the parameters for deleting a personal index entry.
type DeleteEntryInput struct {
	BaseWord string
}

// Validate checks all fields and collects all errors. The base word must
// already be in normalized form; accepting raw tokens here would silently
// delete a different entry than the caller named.
func (i DeleteEntryInput) Validate() error {
	var errs []domain.FieldError

	word := strings.TrimSpace(i.BaseWord)
	if word == "" {
		errs = append(errs, domain.FieldError{Field: "base_word", Message: "required"})
	} else if domain.NormalizeWord(word) != word {
		errs = append(errs, domain.FieldError{Field: "base_word", Message: "must be a normalized base word"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}

// ListSentencesInput holds the parameters for listing personal sentences.
type ListSentencesInput struct {
	Search    *string
	SortOrder string
	Limit     int
	Offset    int
}

// Validate checks all fields and collects all errors.
func (i ListSentencesInput) Validate() error {
	var errs []domain.FieldError

	if i.Limit < 0 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "must be non-negative"})
	}
	if i.Limit > 200 {
		errs = append(errs, domain.FieldError{Field: "limit", Message: "max 200"})
	}
	if i.Offset < 0 {
		errs = append(errs, domain.FieldError{Field: "offset", Message: "must be non-negative"})
	}
	if i.SortOrder != "" && i.SortOrder != "ASC" && i.SortOrder != "DESC" {
		errs = append(errs, domain.FieldError{Field: "sort_order", Message: "must be ASC or DESC"})
	}

	if len(errs) > 0 {
		return &domain.ValidationError{Errors: errs}
	}
	return nil
}
