package utils

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebhookLoggerPostsEmbed(t *testing.T) {
	var got DiscordWebhookPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	require.NoError(t, LogError(srv.URL, "Engine", "ProcessMessage", "pipeline failure"))

	require.Len(t, got.Embeds, 1)
	assert.Equal(t, "ERROR Log", got.Embeds[0].Title)
	assert.Equal(t, getColor(Error), got.Embeds[0].Color)
	require.Len(t, got.Embeds[0].Fields, 3)
	assert.Equal(t, "ProcessMessage", got.Embeds[0].Fields[1].Value)
}

func TestWebhookLoggerNoopWithoutURL(t *testing.T) {
	assert.NoError(t, LogInfo("", "Engine", "Moderation", "ignored"))
	assert.NoError(t, LogWarn("", "Raid", "Join Screening", "ignored"))
	assert.NoError(t, LogError("", "Engine", "ProcessMessage", "ignored"))
}
