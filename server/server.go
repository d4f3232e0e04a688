// Package server exposes page annotation over HTTP.
package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ivanvanderbyl/pdflayout"
)

// DefaultMaxUploadBytes caps the size of an uploaded PDF.
const DefaultMaxUploadBytes = 64 << 20

// Annotator annotates a PDF held in memory.
type Annotator interface {
	AnnotateBytes(ctx context.Context, data []byte) ([]pdflayout.PageAnnotation, error)
}

// AnnotateResponse is the body returned by POST /api/annotate.
type AnnotateResponse struct {
	DocumentID string                     `json:"document_id"`
	Filename   string                     `json:"filename,omitempty"`
	Pages      []pdflayout.PageAnnotation `json:"pages"`
}

// Server is the HTTP API server.
type Server struct {
	router         chi.Router
	annotator      Annotator
	log            *zap.Logger
	maxUploadBytes int64
}

// New creates and configures the HTTP server.
func New(annotator Annotator, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		annotator:      annotator,
		log:            log,
		maxUploadBytes: DefaultMaxUploadBytes,
	}
	s.setupRoutes()
	return s
}

// WithMaxUploadBytes sets the upload size limit.
func (s *Server) WithMaxUploadBytes(n int64) *Server {
	if n > 0 {
		s.maxUploadBytes = n
	}
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	r.Get("/health", s.handleHealth)
	r.Post("/api/annotate", s.handleAnnotate)

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleAnnotate(w http.ResponseWriter, r *http.Request) {
	// extra 1MB for form overhead
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes+1<<20)

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.maxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.maxUploadBytes {
		jsonError(w, "file exceeds max size", http.StatusRequestEntityTooLarge)
		return
	}

	docID := uuid.New().String()
	log := s.log.With(
		zap.String("document_id", docID),
		zap.String("request_id", middleware.GetReqID(r.Context())),
	)

	pages, err := s.annotator.AnnotateBytes(r.Context(), data)
	if err != nil {
		log.Warn("annotation failed", zap.Error(err))
		jsonError(w, "annotation failed: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}
	if pages == nil {
		pages = []pdflayout.PageAnnotation{}
	}
	log.Info("document annotated", zap.Int("pages", len(pages)))

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(AnnotateResponse{
		DocumentID: docID,
		Filename:   header.Filename,
		Pages:      pages,
	})
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
