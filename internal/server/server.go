
package server

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"khabar-verifier/internal/classifier"
	"khabar-verifier/internal/crawler"
	"khabar-verifier/internal/models"
	"khabar-verifier/pkg/logger"
)

//go:embed web/index.html
var webFS embed.FS

var pageTmpl = template.Must(template.ParseFS(webFS, "web/index.html"))

// ErrValidation is returned when a submission carries neither a url nor a
// file.
var ErrValidation = errors.New("URL یا فائل فراہم کریں")

const genericErrorMessage = "خرابی آگئی"

// Fetcher retrieves the text of a page.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

type Options struct {
	MaxUploadBytes int64
	HandlerTimeout time.Duration
}

type Server struct {
	log     *logger.Logger
	fetcher Fetcher
	cl      *classifier.Classifier
	opts    Options
}

func New(l *logger.Logger, f Fetcher, cl *classifier.Classifier, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	if opts.HandlerTimeout <= 0 {
		opts.HandlerTimeout = 60 * time.Second
	}
	return &Server{log: l, fetcher: f, cl: cl, opts: opts}
}

// Handler returns the routed handler. Access logging wraps the whole router
// so unmatched routes are logged too.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.index).Methods(http.MethodGet)
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	r.HandleFunc("/api/analyze", s.analyze).Methods(http.MethodPost)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	return s.logRequest(r)
}

func (s *Server) index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := map[string]any{"MaxUploadMB": s.opts.MaxUploadBytes >> 20}
	if err := pageTmpl.Execute(w, data); err != nil {
		s.log.Errorf("render index: %v", err)
	}
}

// POST /api/analyze  multipart: url=... | file=@...
func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.opts.HandlerTimeout)
	defer cancel()

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	sub, err := readSubmission(r, s.opts.MaxUploadBytes)
	if err != nil {
		s.log.Warnf("rejecting submission: %v", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": ErrValidation.Error()})
		return
	}

	var result models.AnalysisResult
	switch sub.kind {
	case models.KindURL:
		result, err = s.analyzeURL(ctx, sub.url)
	default:
		s.log.Infof("media submission kind=%s type=%q", sub.kind, sub.mediaType)
		result = classifier.Media(sub.kind)
	}
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": s.userMessage(err)})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) analyzeURL(ctx context.Context, rawURL string) (models.AnalysisResult, error) {
	body, err := s.fetcher.Fetch(ctx, rawURL)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	res, fakeScore, realScore, err := s.cl.Analyze(body)
	if err != nil {
		return models.AnalysisResult{}, err
	}
	s.log.Infof("analyzed %s bytes=%d fake=%d real=%d verdict=%s", rawURL, len(body), fakeScore, realScore, res.Verdict)
	return res, nil
}

// userMessage logs the structured cause and returns the fixed message that
// is safe to show.
func (s *Server) userMessage(err error) string {
	var fe *crawler.FetchError
	var ce *classifier.ClassificationError
	switch {
	case errors.As(err, &fe):
		s.log.Errorf("fetch failed: %s", fe.Detail())
		return fe.Error()
	case errors.As(err, &ce):
		s.log.Errorf("classification failed: %v", ce.Cause)
		return ce.Error()
	default:
		s.log.Errorf("analyze failed: %v", err)
		return genericErrorMessage
	}
}

type submission struct {
	kind      models.Kind
	url       string
	mediaType string
}

// readSubmission accepts multipart or urlencoded bodies. A non-empty url
// takes precedence over a file.
func readSubmission(r *http.Request, maxMemory int64) (submission, error) {
	err := r.ParseMultipartForm(maxMemory)
	if err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return submission{}, errors.Wrap(err, "parse form")
	}
	if errors.Is(err, http.ErrNotMultipart) {
		if err := r.ParseForm(); err != nil {
			return submission{}, errors.Wrap(err, "parse form")
		}
	}

	if u := strings.TrimSpace(r.PostFormValue("url")); u != "" {
		return submission{kind: models.KindURL, url: u}, nil
	}

	if r.MultipartForm != nil {
		if fhs := r.MultipartForm.File["file"]; len(fhs) > 0 {
			mt := fhs[0].Header.Get("Content-Type")
			return submission{kind: classifier.MediaKind(mt), mediaType: mt}, nil
		}
	}
	return submission{}, ErrValidation
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Infof("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
