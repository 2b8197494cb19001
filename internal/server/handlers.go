package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/lead-cli/internal/export"
	"github.com/sells-group/lead-cli/internal/ingest"
	"github.com/sells-group/lead-cli/internal/intake"
	"github.com/sells-group/lead-cli/internal/model"
	"github.com/sells-group/lead-cli/internal/scorer"
	"github.com/sells-group/lead-cli/internal/suggest"
)

const defaultMaxUploadMB = 10

// ScoreResponse is returned for an accepted batch.
type ScoreResponse struct {
	Message string         `json:"message"`
	Columns []string       `json:"columns"`
	Leads   []model.Lead   `json:"leads"`
	Summary scorer.Summary `json:"summary"`
}

// RejectionResponse is returned when batch validation fails.
type RejectionResponse struct {
	Kind    intake.Kind `json:"kind"`
	Message string      `json:"message"`
	Invalid int         `json:"invalid,omitempty"`
}

// SuggestionsResponse is the day's suggestion list.
type SuggestionsResponse struct {
	Date        string             `json:"date"`
	Suggestions []model.Suggestion `json:"suggestions"`
	Quote       model.Quote        `json:"quote"`
}

// OptionsResponse lists the manual entry choices.
type OptionsResponse struct {
	ProductInterests []string `json:"product_interests"`
	LeadSources      []string `json:"lead_sources"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	b, err := s.readBatch(w, r)
	if err != nil {
		zap.L().Debug("server: unreadable batch", zap.Error(err))
		writeError(w, http.StatusBadRequest, "Error processing file: "+err.Error())
		return
	}

	scored, err := s.pipeline.Process(b)
	if err != nil {
		var verr *intake.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusUnprocessableEntity, RejectionResponse{
				Kind:    verr.Kind,
				Message: verr.Message,
				Invalid: verr.Invalid,
			})
			return
		}
		zap.L().Error("server: process batch", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, ScoreResponse{
		Message: intake.ValidatedMessage,
		Columns: export.Columns(scored),
		Leads:   scored.Leads,
		Summary: scorer.Summarize(scored.Leads),
	})
}

// readBatch accepts a JSON body or a multipart upload in field "file".
func (s *Server) readBatch(w http.ResponseWriter, r *http.Request) (*model.Batch, error) {
	maxMB := s.cfg.MaxUploadMB
	if maxMB <= 0 {
		maxMB = defaultMaxUploadMB
	}
	limit := int64(maxMB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return ingest.ReadJSON(r.Body)
	}

	if err := r.ParseMultipartForm(limit); err != nil {
		return nil, err
	}
	file, hdr, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer file.Close() //nolint:errcheck

	format, err := ingest.FormatOf(hdr.Filename)
	if err != nil {
		return nil, err
	}
	return ingest.Read(file, format, ingest.Options{Sheet: r.FormValue("sheet")})
}

func (s *Server) handleManual(w http.ResponseWriter, r *http.Request) {
	var entry intake.Entry
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	if err := dec.Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	scored, err := s.pipeline.ProcessEntry(entry)
	if err != nil {
		var fe *intake.FormError
		if errors.As(err, &fe) {
			writeJSON(w, http.StatusBadRequest, fe)
			return
		}
		zap.L().Error("server: process entry", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Lead added and scored successfully",
		"lead":    scored.Leads[0],
	})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	now := s.pipeline.Now()
	day, err := suggest.ParseDay(strings.TrimSpace(r.URL.Query().Get("date")), now, now.Location())
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}

	writeJSON(w, http.StatusOK, SuggestionsResponse{
		Date:        day.Format(time.DateOnly),
		Suggestions: s.selector.Select(day),
		Quote:       suggest.QuoteOfDay(day),
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, OptionsResponse{
		ProductInterests: intake.ProductOptions,
		LeadSources:      intake.SourceOptions,
	})
}
