// Package joplin is a typed client for the Joplin data API.
//
// Every method is a single round trip: there is no caching and no retry, and
// every failure surfaces to the caller as a *StatusError, *NotFoundError,
// *NetworkError or *ValidationError.
package joplin

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/taigrr/joplin-cli/internal/types"
)

const (
	DefaultHost = "127.0.0.1"
	DefaultPort = 41184

	pingResponse = "JoplinClipperServer"
)

// Config holds the connection settings. It is fixed when the client is built.
type Config struct {
	Host    string
	Port    int
	Token   string
	Timeout time.Duration
}

// BaseURL returns http://host:port.
func (c Config) BaseURL() string {
	host := c.Host
	if host == "" {
		host = DefaultHost
	}
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("http://%s:%d", host, port)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithBaseURL overrides the URL derived from Config.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithLogger sets the request logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// Client talks to one Joplin instance.
type Client struct {
	cfg      Config
	baseURL  string
	http     *http.Client
	logger   *zap.Logger
	validate *validator.Validate
	now      func() time.Time

	Notes     *NoteService
	Folders   *FolderService
	Tags      *TagService
	Resources *ResourceService
	Search    *SearchService
}

// New creates a Client for cfg.
func New(cfg Config, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	c := &Client{
		cfg:      cfg,
		baseURL:  cfg.BaseURL(),
		http:     &http.Client{Timeout: timeout},
		logger:   zap.NewNop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.Notes = &NoteService{c: c}
	c.Folders = &FolderService{c: c}
	c.Tags = &TagService{c: c}
	c.Resources = &ResourceService{c: c}
	c.Search = &SearchService{c: c}
	return c
}

// Config returns the settings the client was built with.
func (c *Client) Config() Config { return c.cfg }

// Ping checks that the data API is reachable.
func (c *Client) Ping(ctx context.Context) (bool, error) {
	body, err := c.do(ctx, http.MethodGet, "/ping", nil, nil, "")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(string(body)) == pingResponse, nil
}

func (c *Client) check(params any) error {
	err := c.validate.Struct(params)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		return &ValidationError{Field: fieldErrs[0].Field(), Rule: fieldErrs[0].Tag()}
	}
	return errors.Wrap(err, "validate payload")
}

func (c *Client) url(path string, query url.Values) string {
	q := url.Values{}
	for k, v := range query {
		q[k] = v
	}
	q.Set("token", c.cfg.Token)
	return c.baseURL + path + "?" + q.Encode()
}

// send performs the request and returns the response when the status is 2xx.
// The caller owns the body.
func (c *Client) send(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url(path, query), body)
	if err != nil {
		return nil, errors.Wrapf(err, "build %s %s", method, path)
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// url.Error carries the full URL, token included.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		c.logger.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err))
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}

	c.logger.Debug("request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		serr := &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(msg),
		}
		if resp.StatusCode == http.StatusNotFound {
			return nil, &NotFoundError{StatusError: serr}
		}
		return nil, serr
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	resp, err := c.send(ctx, method, path, query, body, contentType)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Method: method, Path: path, Err: err}
	}
	return data, nil
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	return decode(data, out, path)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		payload, err := sonic.Marshal(in)
		if err != nil {
			return errors.Wrapf(err, "encode %s payload", path)
		}
		body = bytes.NewReader(payload)
	}
	data, err := c.do(ctx, method, path, nil, body, "application/json")
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return decode(data, out, path)
}

func (c *Client) delete(ctx context.Context, path string) error {
	_, err := c.do(ctx, http.MethodDelete, path, nil, nil, "")
	return err
}

func decode(data []byte, out any, path string) error {
	if err := sonic.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decode %s response", path)
	}
	return nil
}

// errorMessage pulls {"error": "..."} out of a failure body, falling back to
// the raw text.
func errorMessage(body []byte) string {
	var payload struct {
		Error string `json:"error"`
	}
	if err := sonic.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		return payload.Error
	}
	return strings.TrimSpace(string(body))
}

func listQuery(p types.ListParams) url.Values {
	q := url.Values{}
	if len(p.Fields) > 0 {
		q.Set("fields", strings.Join(p.Fields, ","))
	}
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.OrderBy != "" {
		q.Set("order_by", p.OrderBy)
	}
	if p.OrderDir != "" {
		q.Set("order_dir", p.OrderDir)
	}
	return q
}

func fieldsQuery(fields []string) url.Values {
	if len(fields) == 0 {
		return nil
	}
	return url.Values{"fields": {strings.Join(fields, ",")}}
}

func escape(id string) string {
	return url.PathEscape(id)
}
