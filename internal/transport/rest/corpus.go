package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/obsa-dev/sirreessaa-backend/internal/domain"
	"github.com/obsa-dev/sirreessaa-backend/internal/service/corpus"
)

// corpusService defines the minimal interface needed by CorpusHandler.
type corpusService interface {
	AddSentence(ctx context.Context, input corpus.AddSentenceInput) (*domain.Sentence, error)
	DeleteSentence(ctx context.Context, input corpus.DeleteSentenceInput) error
	DeleteEntry(ctx context.Context, input corpus.DeleteEntryInput) error
	ListSentences(ctx context.Context, input corpus.ListSentencesInput) (*corpus.SentencePage, error)
}

// CorpusHandler serves the personal corpus REST endpoints.
type CorpusHandler struct {
	svc corpusService
	log *slog.Logger
}

// NewCorpusHandler creates a CorpusHandler.
func NewCorpusHandler(svc corpusService, logger *slog.Logger) *CorpusHandler {
	return &CorpusHandler{svc: svc, log: logger.With("handler", "corpus")}
}

type addSentenceRequest struct {
	Text string `json:"text"`
}

type sentenceResponse struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt,omitzero"`
}

// AddSentence handles POST /v1/corpus/sentences.
func (h *CorpusHandler) AddSentence(w http.ResponseWriter, r *http.Request) {
	var req addSentenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	sent, err := h.svc.AddSentence(r.Context(), corpus.AddSentenceInput{Text: req.Text})
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSentenceResponse(*sent))
}

// DeleteSentence handles DELETE /v1/corpus/sentences/{id}.
func (h *CorpusHandler) DeleteSentence(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sentence id")
		return
	}

	if err := h.svc.DeleteSentence(r.Context(), corpus.DeleteSentenceInput{SentenceID: id}); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteEntry handles DELETE /v1/corpus/entries/{baseWord}.
func (h *CorpusHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	baseWord := r.PathValue("baseWord")
	if baseWord == "" {
		writeError(w, http.StatusBadRequest, "base word is required")
		return
	}

	if err := h.svc.DeleteEntry(r.Context(), corpus.DeleteEntryInput{BaseWord: baseWord}); err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type listSentencesResponse struct {
	Sentences []sentenceResponse `json:"sentences"`
	Total     int                `json:"total"`
}

// ListSentences handles GET /v1/corpus/sentences.
func (h *CorpusHandler) ListSentences(w http.ResponseWriter, r *http.Request) {
	input := corpus.ListSentencesInput{
		SortOrder: r.URL.Query().Get("sort"),
	}
	if search := r.URL.Query().Get("search"); search != "" {
		input.Search = &search
	}
	if limit := r.URL.Query().Get("limit"); limit != "" {
		n, err := parseIntParam(limit)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		input.Limit = n
	}
	if offset := r.URL.Query().Get("offset"); offset != "" {
		n, err := parseIntParam(offset)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid offset")
			return
		}
		input.Offset = n
	}

	page, err := h.svc.ListSentences(r.Context(), input)
	if err != nil {
		handleServiceError(w, r, h.log, err)
		return
	}

	resp := listSentencesResponse{
		Sentences: make([]sentenceResponse, len(page.Sentences)),
		Total:     page.Total,
	}
	for i, sent := range page.Sentences {
		resp.Sentences[i] = toSentenceResponse(sent)
	}

	writeJSON(w, http.StatusOK, resp)
}

func toSentenceResponse(sent domain.Sentence) sentenceResponse {
	return sentenceResponse{
		ID:        string(sent.ID),
		Text:      sent.Text,
		CreatedAt: sent.CreatedAt,
	}
}
