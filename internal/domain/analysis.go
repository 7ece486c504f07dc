package domain

// WordStatus classifies one analyzed token.
type WordStatus string

const (
	// StatusCorrect means the literal surface form is attested in the
	// merged global + personal index for the base word.
	StatusCorrect WordStatus = "correct"
	// StatusVariant means the base word is known but this particular
	// spelling is not attested.
	StatusVariant WordStatus = "variant"
	// StatusUnknown means the base word appears in neither scope.
	StatusUnknown WordStatus = "unknown"
)

// Valid reports whether the status is one of the defined values.
func (s WordStatus) Valid() bool {
	switch s {
	case StatusCorrect, StatusVariant, StatusUnknown:
		return true
	}
	return false
}

// WordAnalysis is the ephemeral result of analyzing one token of a
// sentence. Position is the 0-based index of the token in the tokenized
// input. Tokens that strip to pure punctuation produce no WordAnalysis at
// all and later tokens keep their original positions.
type WordAnalysis struct {
	Token       string
	BaseWord    string
	Status      WordStatus
	Position    int
	Suggestions []string
}

// SuggestionMode selects the suggestion query shape.
type SuggestionMode string

const (
	// SuggestionSingle resolves example sentences for the first word only.
	SuggestionSingle SuggestionMode = "single"
	// SuggestionOverlap ranks sentences by how many distinct input base
	// words they contain.
	SuggestionOverlap SuggestionMode = "overlap"
)

// Valid reports whether the mode is one of the defined values.
func (m SuggestionMode) Valid() bool {
	return m == SuggestionSingle || m == SuggestionOverlap
}

// Suggestion is one candidate example sentence. Overlap is the number of
// distinct query base words the sentence contains; it is zero in single
// mode.
type Suggestion struct {
	Sentence string
	Overlap  int
}

// SuggestionResult is the tagged union returned by suggestion queries. The
// kind is decided once at the analyzer boundary and never re-inferred from
// the items downstream.
type SuggestionResult struct {
	Kind  SuggestionMode
	Items []Suggestion
}
