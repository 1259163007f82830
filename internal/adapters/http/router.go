package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/bmenergia/document-organizer/internal/core/domain"
	"github.com/bmenergia/document-organizer/internal/core/ports"
)

// BatchMetrics records analysis and plan-submission outcomes.
type BatchMetrics interface {
	RecordAnalysis(autoFiles, manualFiles, excluded int, duration time.Duration)
	RecordPlanSubmitted()
}

type Router struct {
	analyzer  ports.BatchAnalyzer
	editor    ports.BatchEditor
	processor ports.BatchProcessor
	metrics   BatchMetrics

	rateLimitRPS   int
	rateLimitBurst int
	maxConcurrent  int

	defaultStrategy string
}

type RouterOption func(*Router)

// WithTrafficControl enables the rate limiter and the in-flight request
// cap. Zero values leave the corresponding gate disabled.
func WithTrafficControl(rps, burst, maxConcurrent int) RouterOption {
	return func(rt *Router) {
		rt.rateLimitRPS = rps
		rt.rateLimitBurst = burst
		rt.maxConcurrent = maxConcurrent
	}
}

// WithBatchMetrics attaches the analysis and plan-submission recorders.
func WithBatchMetrics(m BatchMetrics) RouterOption {
	return func(rt *Router) {
		rt.metrics = m
	}
}

// WithDefaultStrategy sets the conflict strategy applied when a process
// request does not name one.
func WithDefaultStrategy(strategy string) RouterOption {
	return func(rt *Router) {
		rt.defaultStrategy = strategy
	}
}

func NewRouter(
	analyzer ports.BatchAnalyzer,
	editor ports.BatchEditor,
	processor ports.BatchProcessor,
	options ...RouterOption,
) *Router {
	rt := &Router{
		analyzer:  analyzer,
		editor:    editor,
		processor: processor,
	}
	for _, opt := range options {
		opt(rt)
	}
	return rt
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/folders", rt.listFolders)
	mux.HandleFunc("/v1/batches", rt.analyzeBatch)
	mux.HandleFunc("/v1/batches/", rt.batchSubroutes)

	var handler http.Handler = mux
	if rt.maxConcurrent > 0 {
		handler = backpressureMiddleware(handler, rt.maxConcurrent, 50*time.Millisecond)
	}
	if rt.rateLimitRPS > 0 {
		burst := rt.rateLimitBurst
		if burst < 1 {
			burst = rt.rateLimitRPS
		}
		handler = rateLimitMiddleware(handler, rt.rateLimitRPS, burst)
	}
	return requestIDMiddleware(accessLogMiddleware(handler))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (rt *Router) listFolders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"folders": domain.Folders()})
}

func (rt *Router) analyzeBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req struct {
		BatchID  string           `json:"batch_id"`
		UnitID   string           `json:"unit_id"`
		BasePath string           `json:"base_path"`
		DateMode string           `json:"date_mode"`
		Event    domain.DropEvent `json:"event"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}

	start := time.Now()
	snap, err := rt.analyzer.Analyze(r.Context(), ports.AnalyzeRequest{
		BatchID:  req.BatchID,
		UnitID:   req.UnitID,
		BasePath: req.BasePath,
		DateMode: domain.DateMode(req.DateMode),
		Event:    req.Event,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordAnalysis(len(snap.Auto), len(snap.Manual), snap.ExcludedFiles, time.Since(start))
	}
	writeJSON(w, http.StatusCreated, snap)
}

// batchSubroutes dispatches /v1/batches/{id} and its nested actions.
func (rt *Router) batchSubroutes(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/v1/batches/")
	if rest == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "batch id is required"})
		return
	}

	batchID, action, _ := strings.Cut(rest, "/")
	switch action {
	case "":
		rt.getBatch(w, r, batchID)
	case "manual":
		rt.moveToManual(w, r, batchID)
	case "assign":
		rt.assignFolder(w, r, batchID)
	case "rename":
		rt.renameFile(w, r, batchID)
	case "remove":
		rt.removeFile(w, r, batchID)
	case "process":
		rt.processBatch(w, r, batchID)
	case "result":
		rt.getResult(w, r, batchID)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown batch action"})
	}
}

func (rt *Router) getBatch(w http.ResponseWriter, r *http.Request, batchID string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	snap, err := rt.analyzer.Snapshot(r.Context(), batchID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (rt *Router) moveToManual(w http.ResponseWriter, r *http.Request, batchID string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req struct {
		RelativePath string `json:"relative_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RelativePath == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "relative_path is required"})
		return
	}
	snap, err := rt.editor.MoveToManual(r.Context(), batchID, req.RelativePath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (rt *Router) assignFolder(w http.ResponseWriter, r *http.Request, batchID string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req struct {
		RelativePaths []string `json:"relative_paths"`
		FolderID      string   `json:"folder_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.RelativePaths) == 0 || req.FolderID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "relative_paths and folder_id are required"})
		return
	}
	snap, err := rt.editor.AssignFolder(r.Context(), batchID, req.RelativePaths, req.FolderID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (rt *Router) renameFile(w http.ResponseWriter, r *http.Request, batchID string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req struct {
		RelativePath string `json:"relative_path"`
		NewName      string `json:"new_name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RelativePath == "" || req.NewName == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "relative_path and new_name are required"})
		return
	}
	snap, err := rt.editor.Rename(r.Context(), batchID, req.RelativePath, req.NewName)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (rt *Router) removeFile(w http.ResponseWriter, r *http.Request, batchID string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req struct {
		RelativePath string `json:"relative_path"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RelativePath == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "relative_path is required"})
		return
	}
	snap, err := rt.editor.Remove(r.Context(), batchID, req.RelativePath)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (rt *Router) processBatch(w http.ResponseWriter, r *http.Request, batchID string) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	var req struct {
		Strategy string `json:"strategy"`
	}
	if r.Body != nil {
		// An empty body means the default strategy.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if req.Strategy == "" {
		req.Strategy = rt.defaultStrategy
	}
	strategy, ok := domain.ParseConflictStrategy(req.Strategy)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unknown conflict strategy"})
		return
	}

	plan, warnings, err := rt.processor.Process(r.Context(), batchID, strategy)
	if err != nil {
		writeError(w, err)
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordPlanSubmitted()
	}
	writeJSON(w, http.StatusAccepted, map[string]any{
		"plan_id":    plan.ID,
		"operations": len(plan.Operations),
		"warnings":   warnings,
	})
}

func (rt *Router) getResult(w http.ResponseWriter, r *http.Request, batchID string) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	result, err := rt.processor.Result(r.Context(), batchID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
