package qa

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/model"
)

func testDocument(id string) *model.Document {
	return &model.Document{
		ID:      id,
		Name:    "report.pdf",
		Content: []byte("%PDF-1.4\nfake"),
		Size:    13,
	}
}

func TestCombinedModeSendsFileAndQuestion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/upload-ask", r.URL.Path)
		require.NoError(t, r.ParseMultipartForm(1 << 20))

		assert.Equal(t, "What is this?", r.FormValue("question"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "report.pdf", header.Filename)
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-1.4\nfake"), content)

		_ = json.NewEncoder(w).Encode(map[string]string{"answer": "a summary"})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Mode: ModeCombined, Timeout: time.Second})
	answer, err := client.Ask(context.Background(), testDocument("doc-1"), "What is this?")
	require.NoError(t, err)
	assert.Equal(t, "a summary", answer)
}

func TestEmptyAnswerFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"answer": "   "})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Timeout: time.Second})
	answer, err := client.Ask(context.Background(), testDocument("doc-1"), "anything")
	require.NoError(t, err)
	assert.Equal(t, FallbackNoAnswer, answer)
}

func TestBackendErrorStatusIsReturned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Timeout: time.Second})
	_, err := client.Ask(context.Background(), testDocument("doc-1"), "anything")
	assert.Error(t, err)
}

func TestSplitModeUploadsEachDocumentOnce(t *testing.T) {
	var uploads, asks int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/upload-pdf":
			uploads++
			w.WriteHeader(http.StatusOK)
		case "/ask":
			asks++
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			var payload map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			assert.NotEmpty(t, payload["question"])
			_ = json.NewEncoder(w).Encode(map[string]string{"answer": "ok"})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Mode: ModeSplit, Timeout: time.Second})
	doc := testDocument("doc-1")

	_, err := client.Ask(context.Background(), doc, "first?")
	require.NoError(t, err)
	_, err = client.Ask(context.Background(), doc, "second?")
	require.NoError(t, err)
	assert.Equal(t, 1, uploads)
	assert.Equal(t, 2, asks)

	// A different document triggers a fresh upload.
	_, err = client.Ask(context.Background(), testDocument("doc-2"), "third?")
	require.NoError(t, err)
	assert.Equal(t, 2, uploads)
}
