package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
	"github.com/obsa-dev/sirreessaa-backend/internal/service/analyzer"
)

// analyzerService defines the minimal interface needed by AnalyzerHandler.
type analyzerService interface {
	AnalyzeSentence(ctx context.Context, input analyzer.AnalyzeInput) ([]domain.WordAnalysis, error)
	GetSuggestions(ctx context.Context, input analyzer.SuggestionsInput) (*domain.SuggestionResult, error)
}

// AnalyzerHandler serves the analysis REST endpoints.
type AnalyzerHandler struct {
	svc analyzerService
	log *slog.Logger
}

// NewAnalyzerHandler creates an AnalyzerHandler.
func NewAnalyzerHandler(svc analyzerService, logger *slog.Logger) *AnalyzerHandler {
	return &AnalyzerHandler{svc: svc, log: logger.With("handler", "analyzer")}
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type wordAnalysisResponse struct {
	Token       string   `json:"token"`
	BaseWord    string   `json:"baseWord"`
	Status      string   `json:"status"`
	Position    int      `json:"position"`
	Suggestions []string `json:"suggestions,omitempty"`
}

type analyzeResponse struct {
	Words []wordAnalysisResponse `json:"words"`
}

// Analyze handles POST /v1/analyze.
func (h *AnalyzerHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	words, err := h.svc.AnalyzeSentence(r.Context(), analyzer.AnalyzeInput{Text: req.Text})
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	resp := analyzeResponse{Words: make([]wordAnalysisResponse, len(words))}
	for i, word := range words {
		resp.Words[i] = wordAnalysisResponse{
			Token:       word.Token,
			BaseWord:    word.BaseWord,
			Status:      string(word.Status),
			Position:    word.Position,
			Suggestions: word.Suggestions,
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

type suggestionsRequest struct {
	Words []string `json:"words"`
	Mode  string   `json:"mode"`
}

type suggestionResponse struct {
	Sentence string `json:"sentence"`
	Overlap  int    `json:"overlap,omitempty"`
}

type suggestionsResponse struct {
	Mode  string               `json:"mode"`
	Items []suggestionResponse `json:"items"`
}

// Suggestions handles POST /v1/suggestions.
func (h *AnalyzerHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	var req suggestionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.GetSuggestions(r.Context(), analyzer.SuggestionsInput{
		Words: req.Words,
		Mode:  domain.SuggestionMode(req.Mode),
	})
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	resp := suggestionsResponse{
		Mode:  string(result.Kind),
		Items: make([]suggestionResponse, len(result.Items)),
	}
	for i, item := range result.Items {
		resp.Items[i] = suggestionResponse{Sentence: item.Sentence, Overlap: item.Overlap}
	}

	writeJSON(w, http.StatusOK, resp)
}
