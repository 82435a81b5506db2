package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rhystmorgan/phonebook/internal/metrics"
)

const (
	DefaultBaseURL = "http://146.59.52.68:11235/"
	DefaultTimeout = 20 * time.Second

	// ImageField is the multipart field the upload endpoint reads.
	ImageField = "image"

	maxResponseBytes = 4 << 20
)

// Client speaks the Contacts REST API.
type Client struct {
	httpClient *http.Client
	config     Config
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithTracer(t trace.Tracer) Option {
	return func(c *Client) {
		c.tracer = t
	}
}

// NewClient validates config and fills in defaults for the base URL and timeout.
func NewClient(config Config, opts ...Option) (*Client, error) {
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	if _, err := url.ParseRequestURI(config.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", config.BaseURL, err)
	}
	if strings.TrimSpace(config.APIKey) == "" {
		return nil, fmt.Errorf("api key is required")
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	c := &Client{config: config}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: config.Timeout}
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer("phonebook/api")
	}

	return c, nil
}

func (c *Client) ListUsers(ctx context.Context) ([]UserDTO, error) {
	var env Envelope[UserList]
	if err := c.do(ctx, EndpointList, http.MethodGet, c.endpoint("GetAll"), nil, "", &env); err != nil {
		return nil, err
	}
	if env.Data == nil || env.Data.Users == nil {
		return nil, NewRejectedError(env.Status, env.Messages)
	}
	return env.Data.Users, nil
}

func (c *Client) GetUser(ctx context.Context, id string) (*UserDTO, error) {
	var env Envelope[UserDTO]
	if err := c.do(ctx, EndpointGet, http.MethodGet, c.endpoint(url.PathEscape(id)), nil, "", &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, NewRejectedError(env.Status, env.Messages)
	}
	return env.Data, nil
}

func (c *Client) CreateUser(ctx context.Context, req UserRequest) (*UserDTO, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}

	var env Envelope[UserDTO]
	if err := c.do(ctx, EndpointCreate, http.MethodPost, c.endpoint(""), bytes.NewReader(body), "application/json", &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, NewRejectedError(env.Status, env.Messages)
	}
	return env.Data, nil
}

func (c *Client) UpdateUser(ctx context.Context, id string, req UserRequest) (*UserDTO, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user: %w", err)
	}

	var env Envelope[UserDTO]
	if err := c.do(ctx, EndpointUpdate, http.MethodPut, c.endpoint(url.PathEscape(id)), bytes.NewReader(body), "application/json", &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, NewRejectedError(env.Status, env.Messages)
	}
	return env.Data, nil
}

func (c *Client) DeleteUser(ctx context.Context, id string) error {
	var env Envelope[Empty]
	return c.do(ctx, EndpointDelete, http.MethodDelete, c.endpoint(url.PathEscape(id)), nil, "", &env)
}

// UploadImage sends the file at path as a multipart "image" part and returns
// the hosted URL. Only .jpg, .jpeg and .png files are accepted; anything else
// fails before a request is made.
func (c *Client) UploadImage(ctx context.Context, path string) (string, error) {
	mime, err := ImageMIMEType(path)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, ImageField, filepath.Base(path)))
	header.Set("Content-Type", mime)
	part, err := w.CreatePart(header)
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	c.metrics.AddUploadBytes(buf.Len())

	var env Envelope[UploadResult]
	if err := c.do(ctx, EndpointUpload, http.MethodPost, c.endpoint("UploadImage"), &buf, w.FormDataContentType(), &env); err != nil {
		return "", err
	}
	if env.Data == nil || env.Data.ImageURL == "" {
		return "", NewRejectedError(env.Status, env.Messages)
	}
	return env.Data.ImageURL, nil
}

// ImageMIMEType maps an upload's extension to its content type.
func ImageMIMEType(path string) (string, error) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")) {
	case "jpg", "jpeg":
		return "image/jpeg", nil
	case "png":
		return "image/png", nil
	default:
		return "", NewUnsupportedFileError(filepath.Base(path))
	}
}

func (c *Client) endpoint(suffix string) string {
	base := strings.TrimRight(c.config.BaseURL, "/") + "/api/User"
	if suffix == "" {
		return base
	}
	return base + "/" + suffix
}

func (c *Client) do(ctx context.Context, endpoint, method, target string, body io.Reader, contentType string, env envelope) (err error) {
	ctx, span := c.tracer.Start(ctx, "contacts."+endpoint,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.method", method),
			attribute.String("contacts.endpoint", endpoint),
		))
	start := time.Now()
	defer func() {
		c.metrics.ObserveRequest(endpoint, err, time.Since(start).Seconds())
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return NewAPIError(ErrNetworkConnection, "failed to build request", err)
	}
	// Sent verbatim; the service expects this exact casing.
	req.Header["ApiKey"] = []string{c.config.APIKey}
	req.Header.Set("accept", "text/plain")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ClassifyError(err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return ClassifyError(err)
	}

	if decodeErr := json.Unmarshal(raw, env); decodeErr != nil {
		if resp.StatusCode >= 300 {
			return NewStatusError(resp.StatusCode)
		}
		return NewBadResponseError("failed to decode response", decodeErr)
	}

	if !env.succeeded() {
		e := NewRejectedError(resp.StatusCode, env.messages())
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			e.Type = ErrUnauthorized
		case http.StatusNotFound:
			e.Type = ErrNotFound
		}
		return e
	}
	if resp.StatusCode >= 300 {
		return NewStatusError(resp.StatusCode)
	}

	return nil
}

type envelope interface {
	succeeded() bool
	messages() []string
}

func (e *Envelope[T]) succeeded() bool {
	return e.Success
}

func (e *Envelope[T]) messages() []string {
	return e.Messages
}
