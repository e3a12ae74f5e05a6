package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"runtime"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/facturaIA/docqa-service/internal/ai"
	"github.com/facturaIA/docqa-service/internal/auth"
	"github.com/facturaIA/docqa-service/internal/models"
	"github.com/facturaIA/docqa-service/internal/storage"
	"github.com/facturaIA/docqa-service/internal/submission"
)

const Version = "1.0.0"

// DocumentSource fetches a stored artifact by key
type DocumentSource interface {
	Fetch(ctx context.Context, objectPath string) (*models.Upload, error)
	Ping(ctx context.Context) error
}

// Handler handles HTTP requests for document QA and extraction
type Handler struct {
	config     *models.Config
	dispatcher *submission.Dispatcher
	documents  DocumentSource
	provider   string
}

// NewHandler creates a new API handler. documents may be nil.
func NewHandler(config *models.Config, dispatcher *submission.Dispatcher, documents DocumentSource, providerName string) *Handler {
	return &Handler{
		config:     config,
		dispatcher: dispatcher,
		documents:  documents,
		provider:   providerName,
	}
}

// SetupRoutes configures the HTTP routes
func (h *Handler) SetupRoutes() *mux.Router {
	router := mux.NewRouter()

	// Main endpoints
	router.HandleFunc("/api/submit", h.Submit).Methods("POST")
	router.HandleFunc("/api/extract", h.Extract).Methods("POST")
	router.HandleFunc("/api/ask", h.Ask).Methods("POST")

	// Health check
	router.HandleFunc("/health", h.Health).Methods("GET")

	return router
}

// SubmitResponse wraps a submission outcome
type SubmitResponse struct {
	Success bool `json:"success"`
	*submission.Outcome
	TotalDuration float64 `json:"totalDuration"`
}

// Submit runs the full dispatch: PDF -> extraction, image -> answer,
// nothing usable -> warning
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	startTime := time.Now()

	if status, err := h.parseForm(w, r); err != nil {
		h.sendError(w, status, err.Error())
		return
	}

	upload, status, err := h.readUpload(r)
	if err != nil {
		h.sendError(w, status, err.Error())
		return
	}

	outcome, err := h.dispatcher.Submit(r.Context(), submission.Submission{
		Prompt: r.FormValue("prompt"),
		File:   upload,
	})
	if err != nil {
		log.Printf("[Submit] request from %s failed", requester(r))
		h.sendSubmitError(w, err)
		return
	}
	log.Printf("[Submit %s] %s for %s", outcome.ID[:8], outcome.Kind, requester(r))

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(SubmitResponse{
		Success:       outcome.Kind != submission.KindWarning,
		Outcome:       outcome,
		TotalDuration: time.Since(startTime).Seconds(),
	})
}

// Extract runs only the PDF extractor and writes the bare extraction record.
// A document read failure still answers 200 with the partial record; the
// error travels in the X-Extraction-Error header.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if status, err := h.parseForm(w, r); err != nil {
		h.sendError(w, status, err.Error())
		return
	}

	upload, status, err := h.readUpload(r)
	if err != nil {
		h.sendError(w, status, err.Error())
		return
	}
	if upload == nil {
		h.sendError(w, http.StatusBadRequest, "No file provided (use 'file' field)")
		return
	}
	if submission.DetectContentType(upload) != "application/pdf" {
		h.sendError(w, http.StatusUnsupportedMediaType, "file is not a PDF")
		return
	}

	result, err := h.dispatcher.ExtractPDF(upload.Data)
	if err != nil {
		log.Printf("[Extract] %v", err)
		w.Header().Set("X-Extraction-Error", err.Error())
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(result)
}

// Ask sends an image and optional prompt to the model. With
// "Accept: text/plain" the answer is written verbatim.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if status, err := h.parseForm(w, r); err != nil {
		h.sendError(w, status, err.Error())
		return
	}

	upload, status, err := h.readUpload(r)
	if err != nil {
		h.sendError(w, status, err.Error())
		return
	}
	if upload == nil {
		h.sendError(w, http.StatusBadRequest, submission.MissingInputWarning)
		return
	}

	image, err := submission.DecodeImage(upload.Data)
	if err != nil {
		h.sendError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.dispatcher.Ask(r.Context(), models.QAQuery{
		Prompt: r.FormValue("prompt"),
		Image:  image,
	})
	if err != nil {
		h.sendSubmitError(w, err)
		return
	}

	if strings.HasPrefix(r.Header.Get("Accept"), "text/plain") {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, resp.Text)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

// HealthResponse represents the health check response structure
type HealthResponse struct {
	Status    string        `json:"status"`
	Version   string        `json:"version"`
	Timestamp string        `json:"timestamp"`
	Uptime    string        `json:"uptime"`
	Memory    MemoryStats   `json:"memory"`
	AI        ServiceStatus `json:"ai"`
	Storage   ServiceStatus `json:"storage"`
}

// MemoryStats represents memory usage statistics
type MemoryStats struct {
	Allocated string `json:"allocated"`
	Total     string `json:"total"`
	System    string `json:"system"`
}

// ServiceStatus represents the status of a service dependency
type ServiceStatus struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Error     string `json:"error,omitempty"`
}

var startTime = time.Now()

// Health endpoint
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now().Format(time.RFC3339),
		Uptime:    time.Since(startTime).String(),
		Memory: MemoryStats{
			Allocated: fmt.Sprintf("%.2f MB", float64(m.Alloc)/1024/1024),
			Total:     fmt.Sprintf("%.2f MB", float64(m.TotalAlloc)/1024/1024),
			System:    fmt.Sprintf("%.2f MB", float64(m.Sys)/1024/1024),
		},
		AI:      h.checkProvider(),
		Storage: h.checkStorage(r.Context()),
	}

	// Without a model key every question fails; extraction still works
	if !response.AI.Available {
		response.Status = "degraded"
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// checkProvider reports whether the default provider has credentials
func (h *Handler) checkProvider() ServiceStatus {
	status := ServiceStatus{Available: true, Version: h.provider}

	var key string
	switch h.config.AI.DefaultProvider {
	case "gemini":
		key = h.config.AI.Gemini.APIKey
	case "openai":
		key = h.config.AI.OpenAI.APIKey
	case "ollama":
		return status
	}
	if key == "" {
		status.Available = false
		status.Error = ai.ErrMissingAPIKey.Error()
	}
	return status
}

// checkStorage verifies the MinIO document source
func (h *Handler) checkStorage(ctx context.Context) ServiceStatus {
	if h.documents == nil {
		return ServiceStatus{
			Available: false,
			Error:     "storage not configured",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := h.documents.Ping(ctx); err != nil {
		return ServiceStatus{Available: false, Error: err.Error()}
	}
	return ServiceStatus{Available: true, Version: "MinIO S3"}
}

// parseForm limits the body and parses multipart or urlencoded forms
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) (int, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.config.MaxUploadSize)

	err := r.ParseMultipartForm(h.config.MaxUploadSize)
	if errors.Is(err, http.ErrNotMultipart) {
		err = r.ParseForm()
	}
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			return http.StatusRequestEntityTooLarge, errors.New("File too large")
		}
		return http.StatusBadRequest, errors.New("invalid form data")
	}
	return 0, nil
}

// readUpload returns the submitted artifact: the "file" or "image" part, or
// the "object" key looked up in storage. No artifact is (nil, 0, nil).
func (h *Handler) readUpload(r *http.Request) (*models.Upload, int, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		file, header, err = r.FormFile("image")
	}
	if err == nil {
		defer file.Close()

		data, err := io.ReadAll(file)
		if err != nil {
			return nil, http.StatusInternalServerError, errors.New("Failed to read file")
		}
		return &models.Upload{
			Name:        header.Filename,
			ContentType: header.Header.Get("Content-Type"),
			Data:        data,
		}, 0, nil
	}

	key := strings.TrimSpace(r.FormValue("object"))
	if key == "" {
		return nil, 0, nil
	}
	if h.documents == nil {
		return nil, http.StatusServiceUnavailable, errors.New("storage not available")
	}

	upload, err := h.documents.Fetch(r.Context(), key)
	if err != nil {
		log.Printf("[Storage] fetch %s: %v", key, err)
		if errors.Is(err, storage.ErrTooLarge) {
			return nil, http.StatusRequestEntityTooLarge, err
		}
		return nil, http.StatusNotFound, fmt.Errorf("document not found: %s", key)
	}
	return upload, 0, nil
}

// requester names the caller in log lines: the token subject when auth is
// enabled, anonymous otherwise
func requester(r *http.Request) string {
	claims, err := auth.GetClaimsFromContext(r.Context())
	if err != nil || claims.Subject == "" {
		return "anonymous"
	}
	return claims.Subject
}

// sendSubmitError maps dispatch errors onto HTTP statuses
func (h *Handler) sendSubmitError(w http.ResponseWriter, err error) {
	var modelErr *ai.ModelError
	switch {
	case errors.Is(err, submission.ErrUnsupportedMedia):
		h.sendError(w, http.StatusUnsupportedMediaType, err.Error())
	case errors.Is(err, submission.ErrInvalidImage), errors.Is(err, ai.ErrMissingInput):
		h.sendError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &modelErr):
		log.Printf("[Submit] %v", err)
		h.sendError(w, http.StatusBadGateway, err.Error())
	default:
		log.Printf("[Submit] unexpected error: %v", err)
		h.sendError(w, http.StatusInternalServerError, err.Error())
	}
}

// sendError sends an error response
func (h *Handler) sendError(w http.ResponseWriter, statusCode int, message string) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
