// Package qa is the client for the question-answering backend. The backend
// (PDF ingestion, retrieval, language model) is an external collaborator; only
// its HTTP contract is known here.
package qa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"docuchat/internal/model"
)

const (
	// ModeCombined posts file and question together to /upload-ask.
	ModeCombined = "combined"
	// ModeSplit uploads the file once via /upload-pdf, then posts the
	// question alone to /ask.
	ModeSplit = "split"
)

// FallbackNoAnswer is shown when the backend answers 2xx without an answer
// field.
const FallbackNoAnswer = "Sorry, I could not find an answer."

type Config struct {
	BaseURL string
	Mode    string
	Timeout time.Duration
}

type Client struct {
	httpClient *http.Client
	baseURL    string
	mode       string

	mu            sync.Mutex
	uploadedDocID string // last document pushed via /upload-pdf (split mode)
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}
	mode := cfg.Mode
	if mode != ModeSplit {
		mode = ModeCombined
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		mode:       mode,
	}
}

// Ask turns a question about doc into an answer string. A 2xx response with
// no answer field yields FallbackNoAnswer; any other failure is returned as
// an error for the caller to map to its fixed user-facing message.
func (c *Client) Ask(ctx context.Context, doc *model.Document, question string) (string, error) {
	if c.mode == ModeSplit {
		if err := c.ensureUploaded(ctx, doc); err != nil {
			return "", err
		}
		return c.askJSON(ctx, question)
	}
	return c.askCombined(ctx, doc, question)
}

func (c *Client) askCombined(ctx context.Context, doc *model.Document, question string) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", doc.Name)
	if err != nil {
		return "", fmt.Errorf("build multipart file failed: %w", err)
	}
	if _, err := part.Write(doc.Content); err != nil {
		return "", fmt.Errorf("write multipart file failed: %w", err)
	}
	if err := writer.WriteField("question", question); err != nil {
		return "", fmt.Errorf("write question field failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("close multipart body failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-ask", &body)
	if err != nil {
		return "", fmt.Errorf("build upload-ask request failed: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.doAnswer(req)
}

func (c *Client) ensureUploaded(ctx context.Context, doc *model.Document) error {
	c.mu.Lock()
	uploaded := c.uploadedDocID == doc.ID
	c.mu.Unlock()
	if uploaded {
		return nil
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", doc.Name)
	if err != nil {
		return fmt.Errorf("build multipart file failed: %w", err)
	}
	if _, err := part.Write(doc.Content); err != nil {
		return fmt.Errorf("write multipart file failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("close multipart body failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/upload-pdf", &body)
	if err != nil {
		return fmt.Errorf("build upload-pdf request failed: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload-pdf request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("upload-pdf status %d", resp.StatusCode)
	}

	c.mu.Lock()
	c.uploadedDocID = doc.ID
	c.mu.Unlock()
	return nil
}

func (c *Client) askJSON(ctx context.Context, question string) (string, error) {
	payload, err := json.Marshal(map[string]string{"question": question})
	if err != nil {
		return "", fmt.Errorf("marshal ask request failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build ask request failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.doAnswer(req)
}

func (c *Client) doAnswer(req *http.Request) (string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("qa request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read qa response failed: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("qa backend status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("parse qa response failed: %w", err)
	}
	if strings.TrimSpace(parsed.Answer) == "" {
		return FallbackNoAnswer, nil
	}
	return parsed.Answer, nil
}
