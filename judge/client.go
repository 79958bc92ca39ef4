package judge

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"sentinel-bot/model"
	"sentinel-bot/utils"
)

// Client calls the external judgment service: an opaque scorer that
// returns a JSON opinion about one message. Failures always degrade to a
// safe default; the pipeline is never blocked on the judge.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	timeout    time.Duration
	maxRetries int
	retryDelay time.Duration
	cache      *expirable.LRU[string, model.Judgment]
}

type request struct {
	Text         string `json:"text"`
	UserContext  string `json:"user_context"`
	GuildContext string `json:"guild_context"`
}

// NewClient builds a judge client. retryDelay is the base for the
// exponential backoff between attempts.
func NewClient(endpoint, apiKey string, cfg model.JudgeConfig) *Client {
	return &Client{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: utils.GlobalHTTPClient,
		timeout:    time.Duration(cfg.TimeoutSecs) * time.Second,
		maxRetries: cfg.MaxRetries,
		retryDelay: time.Second,
		cache: expirable.NewLRU[string, model.Judgment](
			cfg.CacheSize, nil, time.Duration(cfg.CacheTTLMins)*time.Minute),
	}
}

// fallbackJudgment is returned when the response carries no parseable
// JSON: fixed low confidence, no action.
func fallbackJudgment() *model.Judgment {
	return &model.Judgment{RiskScore: 0.1, Confidence: 0, RecommendedAction: model.ActionNone}
}

// conservativeJudgment is returned when the service's safety filter
// rejected the content outright.
func conservativeJudgment() *model.Judgment {
	return &model.Judgment{
		RiskScore:         0.5,
		Confidence:        0.3,
		RecommendedAction: model.ActionMonitorClosely,
		Reasoning:         "safety filter rejected the content",
	}
}

// ShouldAnalyze gates judge calls: only content that already tripped a
// heuristic or contains a trigger keyword is worth the network round trip.
func ShouldAnalyze(content string, hasFindings bool, triggerKeywords []string) bool {
	if hasFindings {
		return true
	}
	lower := strings.ToLower(content)
	for _, kw := range triggerKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// Judge scores one message. Transient failures are retried with
// exponential backoff; a safety rejection is not retried. Results are
// cached by content hash.
func (c *Client) Judge(ctx context.Context, text, userContext, guildContext string) (*model.Judgment, error) {
	cacheKey := hashContent(text)
	if j, ok := c.cache.Get(cacheKey); ok {
		return &j, nil
	}

	body, err := json.Marshal(request{Text: text, UserContext: userContext, GuildContext: guildContext})
	if err != nil {
		return nil, fmt.Errorf("failed to encode judge request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.retryDelay * time.Duration(1<<(attempt-1))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		judgment, retryable, err := c.call(ctx, body)
		if err == nil {
			c.cache.Add(cacheKey, *judgment)
			return judgment, nil
		}
		if !retryable {
			return judgment, err
		}
		lastErr = err
		log.Printf("Judge attempt %d/%d failed: %v", attempt+1, c.maxRetries+1, err)
	}
	return nil, fmt.Errorf("judge unavailable after %d attempts: %w", c.maxRetries+1, lastErr)
}

// call performs one HTTP round trip. The second return reports whether
// the failure is worth retrying.
func (c *Client) call(ctx context.Context, body []byte) (*model.Judgment, bool, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, false, fmt.Errorf("failed to build judge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("judge request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read judge response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnprocessableEntity:
		// Safety rejection: never retried, conservative default.
		return conservativeJudgment(), false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("judge returned status %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, false, fmt.Errorf("judge returned status %s", resp.Status)
	}

	return parseJudgment(respBody), false, nil
}

// parseJudgment extracts the JSON object from a possibly prose-wrapped
// response body. Malformed bodies map to the fixed fallback.
func parseJudgment(body []byte) *model.Judgment {
	text := string(body)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return fallbackJudgment()
	}

	var judgment model.Judgment
	if err := json.Unmarshal([]byte(text[start:end+1]), &judgment); err != nil {
		return fallbackJudgment()
	}
	return &judgment
}

func hashContent(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}
