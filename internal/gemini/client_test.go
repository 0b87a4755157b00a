package gemini

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		HTTPClient: server.Client(),
	})
	require.NoError(t, err)
	return client
}

func envelope(texts ...string) string {
	type part struct {
		Text string `json:"text"`
	}
	parts := make([]part, len(texts))
	for i, txt := range texts {
		parts[i] = part{Text: txt}
	}
	body, _ := json.Marshal(map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": parts}},
		},
	})
	return string(body)
}

func TestAnalyzeDocument(t *testing.T) {
	var gotPath, gotKey string
	var gotBody generateRequest

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.URL.Query().Get("key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Write([]byte(envelope(`{"evaluation":{"score":10}}`)))
	})

	answer, err := client.AnalyzeDocument(context.Background(), []byte("document bytes"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, `{"evaluation":{"score":10}}`, answer)

	assert.Equal(t, "/models/"+DefaultModel+":generateContent", gotPath)
	assert.Equal(t, "test-key", gotKey)

	require.Len(t, gotBody.Contents, 1)
	require.Len(t, gotBody.Contents[0].Parts, 2)
	assert.Equal(t, EvaluationPrompt, gotBody.Contents[0].Parts[0].Text)
	require.NotNil(t, gotBody.Contents[0].Parts[1].InlineData)
	assert.Equal(t, "application/pdf", gotBody.Contents[0].Parts[1].InlineData.MIMEType)
	assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("document bytes")), gotBody.Contents[0].Parts[1].InlineData.Data)
	assert.Equal(t, "application/json", gotBody.GenerationConfig.ResponseMIMEType)
}

func TestAnalyzeDocumentConcatenatesTextParts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(envelope(`{"evaluation":`, `{"score":5}}`)))
	})

	answer, err := client.AnalyzeDocument(context.Background(), []byte("x"), "text/plain")
	require.NoError(t, err)
	assert.Equal(t, `{"evaluation":{"score":5}}`, answer)
}

func TestAnalyzeDocumentHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	})

	_, err := client.AnalyzeDocument(context.Background(), []byte("x"), "text/plain")
	require.Error(t, err)

	var serviceErr *ServiceError
	require.ErrorAs(t, err, &serviceErr)
	assert.Equal(t, http.StatusTooManyRequests, serviceErr.StatusCode)
	assert.Contains(t, serviceErr.Message, "quota exceeded")
}

func TestAnalyzeDocumentUnexpectedEnvelope(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "no candidates", body: `{"candidates":[]}`},
		{name: "candidate without parts", body: `{"candidates":[{"content":{"parts":[]}}]}`},
		{name: "not json", body: `<html>gateway error</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			})

			_, err := client.AnalyzeDocument(context.Background(), []byte("x"), "text/plain")
			require.Error(t, err)
			var serviceErr *ServiceError
			assert.ErrorAs(t, err, &serviceErr)
		})
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(ClientConfig{})
	require.Error(t, err)

	client, err := NewClient(ClientConfig{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, client.model)
	assert.Equal(t, DefaultBaseURL, client.baseURL)
}
