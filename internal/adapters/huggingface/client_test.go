package huggingface

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mikey/email-tone-analyzer/internal/core"
	"github.com/mikey/email-tone-analyzer/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(apiKey, url string) *Client {
	logger := zap.NewNop()
	return NewClient(apiKey, url+"/analyze", url+"/rewrite", nil, utils.NewTextProcessor(4096, logger), logger)
}

func TestAnalyze(t *testing.T) {
	var got predictRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/analyze", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":["Friendly", 0.98,
			{"Openness":0.6,"Conscientiousness":0.7,"Extraversion":0.5,"Agreeableness":1.2,"Neuroticism":0.1},
			[{"label":"friendly","score":0.98},{"label":"neutral","score":0.02}]]}`))
	}))
	defer server.Close()

	analysis, err := newTestClient("secret", server.URL).Analyze(context.Background(), "Thanks so much!")
	require.NoError(t, err)

	assert.Equal(t, []string{"Thanks so much!"}, got.Data)
	assert.Equal(t, "friendly", analysis.Tone)
	assert.Equal(t, core.MaxConfidence, analysis.Confidence)
	assert.Equal(t, core.SentimentPositive, analysis.Sentiment)
	require.NotNil(t, analysis.OceanTraits)
	assert.Equal(t, 1.0, analysis.OceanTraits.Agreeableness)
	assert.Len(t, analysis.AllTones, 2)
	assert.Equal(t, ProviderName, analysis.ModelUsed)
}

func TestAnalyzeWithoutOptionalValues(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":["formal", 0.7, null]}`))
	}))
	defer server.Close()

	analysis, err := newTestClient("secret", server.URL).Analyze(context.Background(), "Dear Sir")
	require.NoError(t, err)
	assert.Equal(t, "formal", analysis.Tone)
	assert.Nil(t, analysis.OceanTraits)
	assert.Empty(t, analysis.AllTones)
	assert.Equal(t, core.SentimentNeutral, analysis.Sentiment)
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{name: "server error", status: http.StatusInternalServerError, body: `oops`, wantErr: core.ErrUpstream},
		{name: "malformed json", status: http.StatusOK, body: `{"data":`, wantErr: core.ErrUpstream},
		{name: "short data", status: http.StatusOK, body: `{"data":["polite"]}`, wantErr: core.ErrUpstream},
		{name: "non string tone", status: http.StatusOK, body: `{"data":[1, 0.5]}`, wantErr: core.ErrUpstream},
		{name: "empty tone", status: http.StatusOK, body: `{"data":["", 0.5]}`, wantErr: core.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient("secret", server.URL).Analyze(context.Background(), "hello")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestMissingAPIKey(t *testing.T) {
	called := false
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	client := newTestClient("", server.URL)

	_, err := client.Analyze(context.Background(), "hello")
	assert.ErrorIs(t, err, core.ErrConfiguration)

	_, err = client.Rewrite(context.Background(), &core.RewriteRequest{Text: "hello", TargetTone: "formal"})
	assert.ErrorIs(t, err, core.ErrConfiguration)

	_, err = client.Analyze(context.Background(), "  ")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
	assert.False(t, called)
}

func TestAnalyzeKeepsContextError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer server.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient("secret", server.URL).Analyze(ctx, "hello")
	assert.ErrorIs(t, err, core.ErrUpstream)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRewrite(t *testing.T) {
	var got predictRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rewrite", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"data":["Dear team, could you kindly review this?"]}`))
	}))
	defer server.Close()

	rewritten, err := newTestClient("secret", server.URL).Rewrite(context.Background(), &core.RewriteRequest{
		Text:       "review this now",
		TargetTone: "formal",
	})
	require.NoError(t, err)
	assert.Equal(t, "Dear team, could you kindly review this?", rewritten)
	assert.Equal(t, []string{"review this now", "formal"}, got.Data)
}

func TestRewriteEmptyResult(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":["  "]}`))
	}))
	defer server.Close()

	_, err := newTestClient("secret", server.URL).Rewrite(context.Background(), &core.RewriteRequest{Text: "x", TargetTone: "casual"})
	assert.ErrorIs(t, err, core.ErrUpstream)
}

func TestDefaultURLs(t *testing.T) {
	client := NewClient("k", "", "", nil, utils.NewTextProcessor(0, zap.NewNop()), zap.NewNop())
	assert.Equal(t, DefaultAnalyzeURL, client.analyzeURL)
	assert.Equal(t, DefaultRewriteURL, client.rewriteURL)
	assert.Equal(t, ProviderName, client.Name())
}
