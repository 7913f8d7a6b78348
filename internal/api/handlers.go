package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/growthops/rollup/internal"
	specs "github.com/growthops/rollup/specs"
)

// reportRequest is the push-style report body. Callers supply either
// already-normalized records, or raw rows plus a normalization config.
type reportRequest struct {
	Records   []specs.RecordSpec         `json:"records,omitempty"`
	Rows      []specs.RawRowSpec         `json:"rows,omitempty"`
	Normalize *specs.NormalizeConfigSpec `json:"normalize,omitempty"`
	Config    specs.AggregateConfigSpec  `json:"config"`
}

type reportResponse struct {
	Report       specs.ReportSpec `json:"report"`
	ExcludedRows int              `json:"excludedRows"`
}

type normalizeRequest struct {
	Rows   []specs.RawRowSpec        `json:"rows"`
	Config specs.NormalizeConfigSpec `json:"config"`
}

// sourceReportRequest drives a pull-style report: the server plans windows,
// fetches, normalizes with the source's preset, and aggregates.
type sourceReportRequest struct {
	Config specs.AggregateConfigSpec `json:"config"`
}

// fetchFailureResponse reports a fetch failure together with how much data was
// retrieved first, so an outage never masquerades as a period of no activity.
type fetchFailureResponse struct {
	Error       string                `json:"error"`
	Window      specs.FetchWindowSpec `json:"window"`
	Page        int                   `json:"page"`
	RowsFetched int                   `json:"rowsFetched"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleNormalize(w http.ResponseWriter, r *http.Request) {
	var req normalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	result, err := internal.Normalize(req.Rows, req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.bus.Publish(internal.RowsExcludedEvent{Source: "push", Excluded: result.ExcludedRows})
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	var req reportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	records := req.Records
	excluded := 0
	if len(req.Rows) > 0 {
		if req.Normalize == nil {
			writeError(w, http.StatusBadRequest, errors.New("raw rows require a normalize config"))
			return
		}
		result, err := internal.Normalize(req.Rows, *req.Normalize)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		s.bus.Publish(internal.RowsExcludedEvent{Source: "push", Excluded: result.ExcludedRows})
		records = append(records, result.Records...)
		excluded = result.ExcludedRows
	}

	report, err := internal.Aggregate(records, req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.bus.Publish(internal.ReportAggregatedEvent{
		Granularity: report.Granularity,
		Buckets:     len(report.Buckets),
		Records:     len(records),
	})
	writeJSON(w, http.StatusOK, reportResponse{Report: report, ExcludedRows: excluded})
}

func (s *Server) handleSourceReport(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["source"]
	source, ok := s.sources[name]
	if !ok {
		writeError(w, http.StatusNotFound, fmt.Errorf("unknown source %q", name))
		return
	}

	var req sourceReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode request: %w", err))
		return
	}

	windows, err := internal.PlanWindows(req.Config.Range, source.Limits.MaxSpanDays)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rows, err := source.Coordinator.FetchAll(r.Context(), windows, source.FetchPage)
	if err != nil {
		var fetchErr *internal.FetchError
		if errors.As(err, &fetchErr) {
			s.logger.Error("source fetch failed",
				zap.String("requestID", RequestID(r.Context())),
				zap.String("source", name),
				zap.Int("rowsFetched", len(fetchErr.Rows)),
				zap.Error(err))
			writeJSON(w, http.StatusBadGateway, fetchFailureResponse{
				Error:       fetchErr.Error(),
				Window:      fetchErr.Window,
				Page:        fetchErr.Page,
				RowsFetched: len(fetchErr.Rows),
			})
			return
		}
		writeError(w, http.StatusBadGateway, err)
		return
	}

	result, err := internal.Normalize(rows, source.Normalize)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.bus.Publish(internal.RowsExcludedEvent{Source: name, Excluded: result.ExcludedRows})

	report, err := internal.Aggregate(result.Records, req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	s.bus.Publish(internal.ReportAggregatedEvent{
		Granularity: report.Granularity,
		Buckets:     len(report.Buckets),
		Records:     len(result.Records),
	})
	writeJSON(w, http.StatusOK, reportResponse{Report: report, ExcludedRows: result.ExcludedRows})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
