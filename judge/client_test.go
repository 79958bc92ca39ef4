package judge

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel-bot/model"
)

func testJudgeConfig() model.JudgeConfig {
	return model.JudgeConfig{TimeoutSecs: 5, MaxRetries: 3, CacheSize: 16, CacheTTLMins: 60}
}

func newTestClient(endpoint string) *Client {
	c := NewClient(endpoint, "test-key", testJudgeConfig())
	c.retryDelay = time.Millisecond
	return c
}

func TestJudgeParsesCleanJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Write([]byte(`{"risk_score":0.8,"confidence":0.9,"recommended_action":"ban","reasoning":"phishing"}`))
	}))
	defer server.Close()

	j, err := newTestClient(server.URL).Judge(context.Background(), "some text", "", "")
	require.NoError(t, err)
	assert.Equal(t, 0.8, j.RiskScore)
	assert.Equal(t, "ban", j.RecommendedAction)
}

func TestJudgeExtractsJSONFromProse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`Here is my analysis: {"risk_score":0.4,"confidence":0.7,"recommended_action":"none"} hope that helps!`))
	}))
	defer server.Close()

	j, err := newTestClient(server.URL).Judge(context.Background(), "some text", "", "")
	require.NoError(t, err)
	assert.Equal(t, 0.4, j.RiskScore)
}

func TestJudgeFallsBackOnMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`I cannot produce structured output today.`))
	}))
	defer server.Close()

	j, err := newTestClient(server.URL).Judge(context.Background(), "some text", "", "")
	require.NoError(t, err)
	assert.Equal(t, 0.1, j.RiskScore)
	assert.Equal(t, 0.0, j.Confidence)
	assert.Equal(t, model.ActionNone, j.RecommendedAction)
}

func TestJudgeRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"risk_score":0.2,"confidence":0.8,"recommended_action":"none"}`))
	}))
	defer server.Close()

	j, err := newTestClient(server.URL).Judge(context.Background(), "some text", "", "")
	require.NoError(t, err)
	assert.Equal(t, 0.2, j.RiskScore)
	assert.Equal(t, int32(3), calls.Load())
}

func TestJudgeSafetyRejectionIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	j, err := newTestClient(server.URL).Judge(context.Background(), "some text", "", "")
	require.NoError(t, err)
	assert.Equal(t, 0.5, j.RiskScore)
	assert.Equal(t, int32(1), calls.Load())
}

func TestJudgeGivesUpAfterRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Judge(context.Background(), "some text", "", "")
	assert.Error(t, err)
}

func TestJudgeCachesByContent(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(`{"risk_score":0.3,"confidence":0.9,"recommended_action":"none"}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	for i := 0; i < 5; i++ {
		_, err := client.Judge(context.Background(), "identical content", "", "")
		require.NoError(t, err)
	}
	assert.Equal(t, int32(1), calls.Load())
}

func TestShouldAnalyze(t *testing.T) {
	keywords := []string{"free nitro", "seed phrase"}

	assert.True(t, ShouldAnalyze("anything at all", true, keywords))
	assert.True(t, ShouldAnalyze("get your FREE NITRO now", false, keywords))
	assert.False(t, ShouldAnalyze("what time is the raid tonight?", false, keywords))
}
