package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikey/email-tone-analyzer/internal/config"
	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/mikey/email-tone-analyzer/internal/heuristic"
	"github.com/mikey/email-tone-analyzer/internal/rewrite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRewriter struct {
	text string
	err  error
}

func (f *fakeRewriter) Name() string { return "fake" }

func (f *fakeRewriter) Rewrite(_ context.Context, req *core.RewriteRequest) (string, error) {
	if f.err != nil || f.text == "" {
		return "", f.err
	}
	return f.text + " (" + req.TargetTone + ")", nil
}

func newTestServer(rewriter core.Rewriter, cfg config.ServerConfig) *Server {
	logger := zap.NewNop()
	analyzer := heuristic.NewProvider(heuristic.NewRandomSource(1), logger)
	service := core.NewToneService(analyzer, rewriter, rewrite.NewAdvisor(), nil, logger, false, 0)

	cfg.Mode = gin.TestMode
	return NewServer(cfg, NewHandler(service, logger), logger)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAnalyze(t *testing.T) {
	s := newTestServer(&fakeRewriter{text: "ok"}, config.ServerConfig{})

	rec := doJSON(t, s, http.MethodPost, "/api/analyze", `{"text":"URGENT!! Please send this ASAP, thank you!"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(RequestIDHeader))

	var analysis core.ToneAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, "polite", analysis.Tone)
	assert.Equal(t, core.SentimentPositive, analysis.Sentiment)
	assert.LessOrEqual(t, analysis.Confidence, core.MaxConfidence)
	assert.Equal(t, heuristic.ProviderName, analysis.ModelUsed)
	assert.NotEmpty(t, analysis.ProcessingID)
}

func TestAnalyzeRejectsBadRequests(t *testing.T) {
	s := newTestServer(&fakeRewriter{text: "ok"}, config.ServerConfig{})

	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "invalid json", body: `{"text":`, want: msgInvalidJSON},
		{name: "missing text", body: `{}`, want: msgMissingText},
		{name: "blank text", body: `{"text":"   "}`, want: msgMissingText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, s, http.MethodPost, "/api/analyze", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.want, decodeError(t, rec).Error)
		})
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	s := newTestServer(&fakeRewriter{text: "ok"}, config.ServerConfig{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRewrite(t *testing.T) {
	s := newTestServer(&fakeRewriter{text: "Dear team"}, config.ServerConfig{})

	rec := doJSON(t, s, http.MethodPost, "/api/rewrite", `{"text":"send it now","tone":"Formal"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp rewriteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Dear team (formal)", resp.RewrittenText)
}

func TestRewriteRejectsBadRequests(t *testing.T) {
	s := newTestServer(&fakeRewriter{text: "ok"}, config.ServerConfig{})

	rec := doJSON(t, s, http.MethodPost, "/api/rewrite", `{"text":"hello"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgMissingTone, decodeError(t, rec).Error)

	rec = doJSON(t, s, http.MethodPost, "/api/rewrite", `{"tone":"formal"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, msgMissingText, decodeError(t, rec).Error)

	rec = doJSON(t, s, http.MethodPost, "/api/rewrite", `{"text":"hello","tone":"made-up"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "Unsupported tone.", resp.Error)
	assert.Equal(t, rewrite.SupportedTones(), resp.SupportedTones)
}

func TestRewriteMapsProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		rewriter   core.Rewriter
		wantStatus int
		want       string
	}{
		{
			name:       "missing credentials",
			rewriter:   core.NewUnconfiguredProvider("huggingface", "Hugging Face API key not configured"),
			wantStatus: http.StatusInternalServerError,
			want:       msgNotConfigured,
		},
		{
			name:       "upstream failure",
			rewriter:   &fakeRewriter{err: fmt.Errorf("%w: status 503", core.ErrUpstream)},
			wantStatus: http.StatusInternalServerError,
			want:       msgRewriteFailed,
		},
		{
			name:       "deadline exceeded",
			rewriter:   &fakeRewriter{err: fmt.Errorf("%w: call failed: %w", core.ErrUpstream, context.DeadlineExceeded)},
			wantStatus: http.StatusGatewayTimeout,
			want:       msgRewriteFailed,
		},
		{
			name:       "empty output",
			rewriter:   &fakeRewriter{text: ""},
			wantStatus: http.StatusInternalServerError,
			want:       msgRewriteFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(tt.rewriter, config.ServerConfig{})
			rec := doJSON(t, s, http.MethodPost, "/api/rewrite", `{"text":"hello","tone":"casual"}`)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.want != "" {
				assert.Equal(t, tt.want, decodeError(t, rec).Error)
			}
		})
	}
}

func TestPlanRewrite(t *testing.T) {
	s := newTestServer(&fakeRewriter{text: "ok"}, config.ServerConfig{})

	rec := doJSON(t, s, http.MethodPost, "/api/rewrite/plan", `{"text":"send it now","tone":"positive"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var directive core.RewriteDirective
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &directive))
	assert.Equal(t, "positive", directive.TargetTone)
	assert.NotEmpty(t, directive.Shifts)
	assert.NotEmpty(t, directive.Instructions)
}

func TestModelsAndSamples(t *testing.T) {
	s := newTestServer(&fakeRewriter{text: "ok"}, config.ServerConfig{})

	rec := doJSON(t, s, http.MethodGet, "/api/models", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var models struct {
		Models []core.ModelPerformanceRecord `json:"models"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &models))
	assert.Len(t, models.Models, len(core.ModelPerformance()))

	rec = doJSON(t, s, http.MethodGet, "/api/samples", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var samples struct {
		Samples []core.SampleEmail `json:"samples"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &samples))
	require.Len(t, samples.Samples, len(core.SampleEmails()))
	for _, sample := range samples.Samples {
		assert.Nil(t, sample.Analysis)
	}

	rec = doJSON(t, s, http.MethodGet, "/api/samples?analyze=true", "")
	require.Equal(t, http.StatusOK, rec.Code)
	samples.Samples = nil
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &samples))
	for _, sample := range samples.Samples {
		require.NotNil(t, sample.Analysis)
		assert.NotEmpty(t, sample.Analysis.Tone)
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(&fakeRewriter{text: "ok"}, config.ServerConfig{})

	rec := doJSON(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, heuristic.ProviderName, health["analyzer"])
	assert.Equal(t, "fake", health["rewriter"])
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(&fakeRewriter{text: "ok"}, config.ServerConfig{RateLimit: 0.001, RateBurst: 1})

	assert.Equal(t, http.StatusOK, doJSON(t, s, http.MethodGet, "/healthz", "").Code)
	rec := doJSON(t, s, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "Rate limit exceeded", decodeError(t, rec).Error)
}

func TestServerStartStop(t *testing.T) {
	s := newTestServer(&fakeRewriter{text: "ok"}, config.ServerConfig{
		ListenAddress:   "127.0.0.1:0",
		ShutdownTimeout: time.Second,
	})
	assert.Nil(t, s.Addr())
	require.NoError(t, s.Start())

	resp, err := http.Get("http://" + s.Addr().String() + "/healthz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	require.NoError(t, s.Stop(context.Background()))
}
