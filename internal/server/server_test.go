
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"khabar-verifier/internal/classifier"
	"khabar-verifier/internal/crawler"
	"khabar-verifier/internal/models"
	"khabar-verifier/pkg/logger"
)

type stubFetcher struct {
	body  string
	err   error
	calls int
	urls  []string
}

func (f *stubFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	f.calls++
	f.urls = append(f.urls, rawURL)
	return f.body, f.err
}

func newTestServer(t *testing.T, f Fetcher) http.Handler {
	t.Helper()
	l := logger.Wrap(zaptest.NewLogger(t))
	return New(l, f, classifier.New(classifier.DefaultKeywords()), Options{MaxUploadBytes: 1 << 20}).Handler()
}

type part struct {
	field, filename, contentType string
	data                         []byte
}

func multipartRequest(t *testing.T, parts ...part) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.filename == "" {
			require.NoError(t, mw.WriteField(p.field, string(p.data)))
			continue
		}
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", `form-data; name="`+p.field+`"; filename="`+p.filename+`"`)
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		require.NoError(t, err)
		_, err = w.Write(p.data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAnalyzeURL(t *testing.T) {
	f := &stubFetcher{body: "<html><title>Report</title><p>According to sources say the study shows results.</p></html>"}
	h := newTestServer(t, f)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, part{field: "url", data: []byte("  https://news.example/a  ")}))

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var res models.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, models.VerdictReal, res.Verdict)
	require.Equal(t, 75, res.Confidence)
	require.NotEmpty(t, res.Analysis)
	require.Equal(t, []string{"https://news.example/a"}, f.urls)
}

func TestAnalyzeURLEncoded(t *testing.T) {
	f := &stubFetcher{body: "BREAKING: you won't believe this shocking viral story!"}
	h := newTestServer(t, f)

	form := url.Values{"url": {"https://news.example/b"}}
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	require.Equal(t, "fake", out["verdict"])
	require.EqualValues(t, 80, out["confidence"])
}

func TestAnalyzeMissingInput(t *testing.T) {
	f := &stubFetcher{}
	h := newTestServer(t, f)

	for name, req := range map[string]*http.Request{
		"empty multipart": multipartRequest(t),
		"blank url":       multipartRequest(t, part{field: "url", data: []byte("   ")}),
		"no body":         httptest.NewRequest(http.MethodPost, "/api/analyze", nil),
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			require.Equal(t, ErrValidation.Error(), decode(t, rec)["error"])
		})
	}
	require.Zero(t, f.calls)
}

func TestAnalyzeImageUpload(t *testing.T) {
	f := &stubFetcher{}
	h := newTestServer(t, f)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, part{
		field: "file", filename: "photo.png", contentType: "image/png",
		data: []byte("breaking shocking viral exclusive urgent"),
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	var res models.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, classifier.Media(models.KindImage), res)
	require.Zero(t, f.calls, "file uploads must not fetch")
}

func TestAnalyzeVideoUpload(t *testing.T) {
	h := newTestServer(t, &stubFetcher{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, part{
		field: "file", filename: "clip.bin", contentType: "application/octet-stream", data: []byte{0, 1, 2},
	}))

	require.Equal(t, http.StatusOK, rec.Code)
	var res models.AnalysisResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	require.Equal(t, models.VerdictUncertain, res.Verdict)
	require.Equal(t, 45, res.Confidence)
	require.Contains(t, res.Analysis, "ویڈیو")
}

func TestAnalyzeURLWinsOverFile(t *testing.T) {
	f := &stubFetcher{body: "The weather today is mild."}
	h := newTestServer(t, f)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t,
		part{field: "file", filename: "a.png", contentType: "image/png", data: []byte("x")},
		part{field: "url", data: []byte("https://news.example/c")},
	))

	require.Equal(t, http.StatusOK, rec.Code)
	out := decode(t, rec)
	require.Equal(t, "uncertain", out["verdict"])
	require.EqualValues(t, 50, out["confidence"])
	require.Equal(t, 1, f.calls)
}

func TestAnalyzeFetchFailure(t *testing.T) {
	target := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer target.Close()

	client := crawler.NewHTTPClient(5*time.Second, 2*time.Second, 1024, "")
	h := newTestServer(t, client)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, part{field: "url", data: []byte(target.URL)}))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "URL سے مواد حاصل نہیں ہو سکا", decode(t, rec)["error"])
}

func TestAnalyzeUnknownFailure(t *testing.T) {
	h := newTestServer(t, &stubFetcher{err: context.Canceled})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, part{field: "url", data: []byte("https://news.example/d")}))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, genericErrorMessage, decode(t, rec)["error"])
}

func TestAnalyzeUploadTooLarge(t *testing.T) {
	h := newTestServer(t, &stubFetcher{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, part{
		field: "file", filename: "big.png", contentType: "image/png", data: bytes.Repeat([]byte("a"), 2<<20),
	}))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, ErrValidation.Error(), decode(t, rec)["error"])
}

func TestRoutes(t *testing.T) {
	h := newTestServer(t, &stubFetcher{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode(t, rec)["status"])

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/analyze", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	require.Contains(t, rec.Body.String(), "خبروں کی تصدیق")
	require.Contains(t, rec.Body.String(), "/api/analyze")
}

func TestAccessLogCoversUnmatchedRoutes(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := logger.Wrap(zap.New(core))
	h := New(l, &stubFetcher{}, classifier.New(classifier.DefaultKeywords()), Options{}).Handler()

	for _, tc := range []struct {
		method, path string
		want         string
	}{
		{http.MethodGet, "/health", "GET /health 200"},
		{http.MethodGet, "/api/analyze", "GET /api/analyze 405"},
		{http.MethodGet, "/nope", "GET /nope 404"},
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))

		found := false
		for _, e := range logs.TakeAll() {
			if strings.HasPrefix(e.Message, tc.want+" ") {
				found = true
			}
		}
		require.True(t, found, "missing access log line %q", tc.want)
	}
}

func TestAnalyzeLogsScoresOnce(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := logger.Wrap(zap.New(core))
	f := &stubFetcher{body: "<title>ignored</title> official statement"}
	h := New(l, f, classifier.New(classifier.DefaultKeywords()), Options{}).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, multipartRequest(t, part{field: "url", data: []byte("https://news.example/e")}))
	require.Equal(t, http.StatusOK, rec.Code)

	lines := logs.FilterMessageSnippet("analyzed https://news.example/e").All()
	require.Len(t, lines, 1)
	require.Contains(t, lines[0].Message, "fake=0 real=2 verdict=real")
	require.NotContains(t, lines[0].Message, "title=")
}
