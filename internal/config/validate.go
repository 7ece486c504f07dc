package config

import (
	"fmt"
)

// Validate performs business-rule validation on the loaded configuration.
// It must be called after loading; Load calls it automatically.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters (got %d)", len(c.Auth.JWTSecret))
	}

	if err := c.Corpus.validate(); err != nil {
		return fmt.Errorf("corpus: %w", err)
	}

	return nil
}

func (c *CorpusConfig) validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be > 0 (got %d)", c.ChunkSize)
	}
	if c.IngestBatchSize <= 0 {
		return fmt.Errorf("ingest_batch_size must be > 0 (got %d)", c.IngestBatchSize)
	}
	if c.MaxSentenceLength <= 0 {
		return fmt.Errorf("max_sentence_length must be > 0 (got %d)", c.MaxSentenceLength)
	}
	if c.SuggestionLimit <= 0 {
		return fmt.Errorf("suggestion_limit must be > 0 (got %d)", c.SuggestionLimit)
	}
	if c.AnalysisSuggestionLimit <= 0 {
		return fmt.Errorf("analysis_suggestion_limit must be > 0 (got %d)", c.AnalysisSuggestionLimit)
	}
	return nil
}
