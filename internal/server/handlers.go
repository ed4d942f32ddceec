package server

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/aitools-hub/link-engine/internal/anchor"
	"github.com/aitools-hub/link-engine/internal/audit"
	"github.com/aitools-hub/link-engine/internal/recommend"
	"github.com/aitools-hub/link-engine/internal/report"
	"github.com/aitools-hub/link-engine/internal/schemas"
	"github.com/aitools-hub/link-engine/internal/types"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"tracked_links": s.store.Len(),
	})
}

func (s *Server) handleClickEvent(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxBeaconBodyBytes))
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "reading request body")
		return
	}

	if err := schemas.ValidateClickEvent(payload); err != nil {
		var ve *schemas.ValidationError
		if errors.As(err, &ve) {
			jsonResponse(w, http.StatusBadRequest, map[string]interface{}{
				"error":  "invalid click event",
				"fields": ve.Errors,
			})
			return
		}
		errorResponse(w, http.StatusBadRequest, "invalid click event")
		return
	}

	var event types.ClickEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		errorResponse(w, http.StatusBadRequest, "decoding click event")
		return
	}
	if err := event.Validate(); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	linkCtx, err := types.ParseLinkContext(event.Context)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.store.RecordClick(event.SourceURL, event.TargetURL, event.AnchorText, linkCtx, event.Metrics)
	jsonResponse(w, http.StatusAccepted, map[string]string{"status": "recorded"})
}

func (s *Server) handlePageAudit(w http.ResponseWriter, r *http.Request) {
	var req types.PageAuditRequest
	if err := decodeJSON(r, maxPageBodyBytes, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	count, err := audit.RecordImpressions(s.store, req.URL, req.HTML)
	if err != nil {
		log.Printf("[server] page audit failed for %s: %v", req.URL, err)
		errorResponse(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	jsonResponse(w, http.StatusAccepted, map[string]interface{}{
		"status":         "recorded",
		"internal_links": count,
	})
}

func (s *Server) handleEngagement(w http.ResponseWriter, r *http.Request) {
	var update types.EngagementUpdate
	if err := decodeJSON(r, maxBeaconBodyBytes, &update); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := update.Validate(); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	if !s.store.UpdateEngagement(update.SourceURL, update.TargetURL, update.ConversionRate, update.BounceRate, update.TimeOnPageSeconds) {
		errorResponse(w, http.StatusNotFound, "link not tracked")
		return
	}
	jsonResponse(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	var req types.RecommendationRequest
	if err := decodeJSON(r, maxPageBodyBytes, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.Validate(); err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	maxLinks := req.MaxLinks
	if maxLinks <= 0 || maxLinks > s.maxRecommendations {
		maxLinks = s.maxRecommendations
	}

	recs := recommend.Links(s.store, req.SourceURL, req.Content, maxLinks)
	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"source_url":      req.SourceURL,
		"recommendations": recs,
	})
}

func (s *Server) handleAnchors(w http.ResponseWriter, r *http.Request) {
	targetURL := r.URL.Query().Get("target")
	if targetURL == "" {
		errorResponse(w, http.StatusBadRequest, "missing target query parameter")
		return
	}
	counts := s.store.AnchorCounts(targetURL)

	var variants []string
	if candidate := r.URL.Query().Get("candidate"); candidate != "" {
		variants = anchor.Diversify(targetURL, candidate, counts)
	}

	jsonResponse(w, http.StatusOK, map[string]interface{}{
		"target_url": targetURL,
		"counts":     counts,
		"suggested":  variants,
	})
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot := report.Export(s.store)
	jsonResponse(w, http.StatusOK, snapshot)
}

// decodeJSON reads a size-capped JSON body into dst, rejecting unknown
// fields.
func decodeJSON(r *http.Request, limit int64, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, limit))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.New("invalid JSON payload: " + err.Error())
	}
	return nil
}
