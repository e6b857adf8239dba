// Package backend is the HTTP client for the Ailbums AI backend, which
// performs all image inference (scoring, face detection, captioning,
// embeddings, duplicate search, post-processing) on behalf of this service.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ServiceError is returned for any rejection from the AI backend. The body
// text is surfaced to the user as a transient notification.
type ServiceError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *ServiceError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("%s: %s", e.Endpoint, e.Body)
	}
	return fmt.Sprintf("%s: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}

// Client talks to one Ailbums AI backend instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the given base URL.
func New(baseURL string) (*Client, error) {
	parsed, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("invalid backend URL %q", baseURL)
	}
	return &Client{
		baseURL: parsed.String(),
		http:    &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

func (c *Client) resolveURL(endpoint string) string {
	return c.baseURL + "/" + strings.TrimPrefix(endpoint, "/")
}

// readErrorBody extracts a short error message from a response body. The
// backend returns either {"detail": "..."} or plain text.
func readErrorBody(r io.Reader) string {
	body, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(body) == 0 {
		return "no response body"
	}
	var payload struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Detail != "" {
			return payload.Detail
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return strings.TrimSpace(string(body))
}

// doPostJSON posts a JSON body and unmarshals the JSON response into T.
func doPostJSON[T any](ctx context.Context, c *Client, endpoint string, requestBody any) (*T, error) {
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("could not marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolveURL(endpoint), bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ServiceError{Endpoint: endpoint, Body: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}

	var result T
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}

// multipartFile names one file part of a multipart request.
type multipartFile struct {
	field    string
	filename string
	path     string
}

// doPostMultipart posts form fields plus file parts and unmarshals the JSON
// response into T. File contents are streamed from disk.
func doPostMultipart[T any](ctx context.Context, c *Client, endpoint string, fields map[string]string, files []multipartFile) (*T, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("could not write field %s: %w", key, err)
		}
	}

	for _, f := range files {
		name := f.filename
		if name == "" {
			name = filepath.Base(f.path)
		}
		part, err := writer.CreateFormFile(f.field, name)
		if err != nil {
			return nil, fmt.Errorf("could not create form file: %w", err)
		}
		file, err := os.Open(f.path)
		if err != nil {
			return nil, fmt.Errorf("could not open %s: %w", f.path, err)
		}
		if _, err := io.Copy(part, file); err != nil {
			file.Close()
			return nil, fmt.Errorf("could not copy file data: %w", err)
		}
		file.Close()
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("could not close writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolveURL(endpoint), &buf)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &ServiceError{Endpoint: endpoint, Body: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ServiceError{Endpoint: endpoint, StatusCode: resp.StatusCode, Body: readErrorBody(resp.Body)}
	}

	var result T
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return &result, nil
}
