package flow

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"
)

// Per-call deadlines. Report generation is the slow path, so document
// calls get the longer bound.
const (
	DefaultTimeout  = 60 * time.Second
	DocumentTimeout = 90 * time.Second
)

// previewLimit bounds how much of an unstructured error body is surfaced
// to the UI.
const previewLimit = 300

// Transport issues all outbound calls for the pipeline: every call is
// bounded by an explicit timeout and every failure is normalized into the
// package's error taxonomy.
type Transport struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewTransport(baseURL string) *Transport {
	return &Transport{
		BaseURL: strings.TrimRight(baseURL, "/"),
		// per-call deadlines come from the context, not the client
		HTTPClient: &http.Client{},
	}
}

// PostJSON sends a JSON body and decodes a JSON response into out.
func (t *Transport) PostJSON(ctx context.Context, path string, body, out any, timeout time.Duration) error {
	data, _, err := t.roundTrip(ctx, http.MethodPost, path, body, timeout)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindMalformed, Message: err.Error()}
	}
	return nil
}

// PostBinary sends a JSON body and returns the raw response bytes.
func (t *Transport) PostBinary(ctx context.Context, path string, body any, timeout time.Duration) ([]byte, error) {
	data, _, err := t.roundTrip(ctx, http.MethodPost, path, body, timeout)
	return data, err
}

// GetJSON decodes a JSON response into out.
func (t *Transport) GetJSON(ctx context.Context, path string, out any, timeout time.Duration) error {
	data, _, err := t.roundTrip(ctx, http.MethodGet, path, nil, timeout)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Kind: KindMalformed, Message: err.Error()}
	}
	return nil
}

// GetBinary returns the raw response bytes.
func (t *Transport) GetBinary(ctx context.Context, path string, timeout time.Duration) ([]byte, error) {
	data, _, err := t.roundTrip(ctx, http.MethodGet, path, nil, timeout)
	return data, err
}

// GetDocument returns the raw response bytes together with the filename
// the server suggested via Content-Disposition, or "" when none was sent.
func (t *Transport) GetDocument(ctx context.Context, path string, timeout time.Duration) ([]byte, string, error) {
	data, header, err := t.roundTrip(ctx, http.MethodGet, path, nil, timeout)
	if err != nil {
		return nil, "", err
	}
	var filename string
	if _, params, err := mime.ParseMediaType(header.Get("Content-Disposition")); err == nil {
		filename = params["filename"]
	}
	return data, filename, nil
}

func (t *Transport) roundTrip(ctx context.Context, method, path string, body any, timeout time.Duration) ([]byte, http.Header, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.BaseURL+path, reader)
	if err != nil {
		return nil, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := t.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, &Error{Kind: KindTimeout, Message: method + " " + path}
		}
		return nil, nil, &Error{Kind: KindServer, Message: err.Error()}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, nil, &Error{Kind: KindTimeout, Message: method + " " + path}
		}
		return nil, nil, &Error{Kind: KindMalformed, Message: err.Error()}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, nil, &Error{
			Kind:    KindServer,
			Status:  resp.StatusCode,
			Message: extractMessage(resp.Header.Get("Content-Type"), data),
		}
	}
	return data, resp.Header, nil
}

// extractMessage normalizes an error body into one human-readable string.
// Structured bodies are searched in a fixed precedence order (detail, then
// error, then message) so message selection is deterministic. Unstructured
// bodies are truncated to a bounded preview.
func extractMessage(contentType string, body []byte) string {
	mediaType := contentType
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		mediaType = mt
	}

	if mediaType == "application/json" {
		var payload struct {
			Detail  string `json:"detail"`
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(body, &payload); err == nil {
			switch {
			case payload.Detail != "":
				return payload.Detail
			case payload.Error != "":
				return payload.Error
			case payload.Message != "":
				return payload.Message
			}
		}
		return fallbackMessage
	}

	preview := strings.TrimSpace(string(body))
	if preview == "" {
		return fallbackMessage
	}
	if len(preview) > previewLimit {
		cut := previewLimit
		// don't split a multi-byte rune at the boundary
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = preview[:cut]
	}
	return preview
}
