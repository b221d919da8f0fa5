package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/netalign/pkg/buildinfo"
	apperr "github.com/matzehuels/netalign/pkg/errors"
	"github.com/matzehuels/netalign/pkg/io"
	"github.com/matzehuels/netalign/pkg/monitor"
	"github.com/matzehuels/netalign/pkg/network"
	"github.com/matzehuels/netalign/pkg/pipeline"
	"github.com/matzehuels/netalign/pkg/storage"
)

// AlignRequest is the body of POST /v1/align. Networks are SIF text,
// alignments "g1 g2" lines.
type AlignRequest struct {
	G1        string   `json:"g1" validate:"required"`
	G2        string   `json:"g2" validate:"required"`
	Alignment string   `json:"alignment" validate:"required"`
	Perfect   string   `json:"perfect,omitempty"`
	View      string   `json:"view,omitempty" validate:"omitempty,oneof=group orphan cycle"`
	Mode      string   `json:"mode,omitempty"`
	Threshold *float64 `json:"threshold,omitempty" validate:"omitempty,gte=0,lte=1"`
	Formats   []string `json:"formats,omitempty" validate:"dive,oneof=json yaml toml table merged sif dot svg"`
	Labels    bool     `json:"labels,omitempty"`
	Refresh   bool     `json:"refresh,omitempty"`
}

// AlignResponse is the answer to POST /v1/align.
type AlignResponse struct {
	Summary *pipeline.Summary `json:"summary"`
	// Artifacts holds the requested text formats.
	Artifacts map[string]string `json:"artifacts,omitempty"`
	Cached    bool              `json:"cached"`
}

// ListResponse is the answer to GET /v1/reports.
type ListResponse struct {
	Reports []*storage.Record `json:"reports"`
}

type errorBody struct {
	Error struct {
		Code    apperr.Code `json:"code"`
		Message string      `json:"message"`
	} `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusOf maps error codes to HTTP statuses.
func statusOf(err error) int {
	if monitor.IsCanceled(err) {
		return http.StatusServiceUnavailable
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}
	switch apperr.GetCode(err) {
	case apperr.ErrCodeInvalidInput, apperr.ErrCodeInvalidNetwork, apperr.ErrCodeInvalidAlignment,
		apperr.ErrCodeInvalidFormat, apperr.ErrCodeInvalidView, apperr.ErrCodeInvalidTable:
		return http.StatusBadRequest
	case apperr.ErrCodeCriterionNotMet:
		return http.StatusUnprocessableEntity
	case apperr.ErrCodeNotFound, apperr.ErrCodeReportNotFound, apperr.ErrCodeFileNotFound:
		return http.StatusNotFound
	case apperr.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := statusOf(err)
	var body errorBody
	body.Error.Code = apperr.GetCode(err)
	body.Error.Message = apperr.UserMessage(err)
	if body.Error.Code == "" {
		body.Error.Code = apperr.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
		if status == http.StatusInternalServerError {
			body.Error.Message = "internal error"
		}
	}
	writeJSON(w, status, body)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string `json:"status"`
		buildinfo.Info
	}{"ok", buildinfo.Get()})
}

func (s *Server) handleAlign(w http.ResponseWriter, r *http.Request) {
	var req AlignRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.opts.MaxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.writeError(w, err)
			return
		}
		s.writeError(w, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "decode request"))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.writeError(w, apperr.Wrap(apperr.ErrCodeInvalidInput, err, "invalid request"))
		return
	}

	in, err := req.inputs()
	if err != nil {
		s.writeError(w, err)
		return
	}
	threshold := req.Threshold
	if threshold == nil {
		def := s.opts.Threshold
		threshold = &def
	}
	formats := req.Formats
	if len(formats) == 0 {
		formats = []string{pipeline.FormatTable}
	}

	ctx := monitor.WithReporter(r.Context(), monitor.LogReporter(s.logger.With("request_id", middleware.GetReqID(r.Context()))))
	res, err := s.runner.Execute(ctx, pipeline.Options{
		Inputs:    in,
		View:      req.View,
		Mode:      req.Mode,
		Threshold: threshold,
		Formats:   formats,
		Labels:    req.Labels,
		Refresh:   req.Refresh,
		Table:     s.opts.Table,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := AlignResponse{
		Summary:   pipeline.Summarize(res),
		Artifacts: make(map[string]string, len(res.Artifacts)),
		Cached:    res.CacheInfo.MergeHit && res.CacheInfo.ScoreHit,
	}
	for f, data := range res.Artifacts {
		resp.Artifacts[f] = string(data)
	}
	writeJSON(w, http.StatusOK, resp)
}

// inputs decodes the inline files.
func (req *AlignRequest) inputs() (*io.Inputs, error) {
	g1, err := io.ReadSIF(strings.NewReader(req.G1), "g1")
	if err != nil {
		return nil, err
	}
	g2, err := io.ReadSIF(strings.NewReader(req.G2), "g2")
	if err != nil {
		return nil, err
	}
	a, err := io.ReadAlignment(strings.NewReader(req.Alignment), "alignment")
	if err != nil {
		return nil, err
	}
	var perfect network.Alignment
	if strings.TrimSpace(req.Perfect) != "" {
		if perfect, err = io.ReadAlignment(strings.NewReader(req.Perfect), "perfect"); err != nil {
			return nil, err
		}
	}
	return &io.Inputs{G1: g1, G2: g2, Alignment: a, Perfect: perfect}, nil
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	if s.runner.Store == nil {
		s.writeError(w, apperr.New(apperr.ErrCodeNotFound, "no report store configured"))
		return
	}
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, apperr.New(apperr.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		limit = n
	}
	recs, err := s.runner.Store.List(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if recs == nil {
		recs = []*storage.Record{}
	}
	writeJSON(w, http.StatusOK, ListResponse{Reports: recs})
}

func (s *Server) handleGetReport(w http.ResponseWriter, r *http.Request) {
	if s.runner.Store == nil {
		s.writeError(w, apperr.New(apperr.ErrCodeNotFound, "no report store configured"))
		return
	}
	rec, err := s.runner.Store.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
