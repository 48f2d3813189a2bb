package reorder

import (
	"context"
	"net/http"
	"time"

	"github.com/cms/backend/internal/domain/ordering"
	"github.com/cms/backend/internal/interfaces/http/dto"
	"github.com/go-resty/resty/v2"
)

const orderPath = "/api/v1/content/{resource}/order"

// HTTPClient is the Transport backed by the content API.
type HTTPClient struct {
	client *resty.Client
}

// HTTPOption configures an HTTPClient
type HTTPOption func(*resty.Client)

// WithToken sends a bearer token with every request.
func WithToken(token string) HTTPOption {
	return func(c *resty.Client) {
		if token != "" {
			c.SetAuthToken(token)
		}
	}
}

// WithTimeout bounds every request.
func WithTimeout(d time.Duration) HTTPOption {
	return func(c *resty.Client) { c.SetTimeout(d) }
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) HTTPOption {
	return func(c *resty.Client) {
		c.SetTransport(hc.Transport)
		c.SetTimeout(hc.Timeout)
	}
}

// NewHTTPClient creates a client for the API at baseURL.
func NewHTTPClient(baseURL string, opts ...HTTPOption) *HTTPClient {
	client := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetTimeout(10 * time.Second)
	for _, opt := range opts {
		opt(client)
	}
	return &HTTPClient{client: client}
}

type envelope[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data"`
	Error   *dto.ErrorInfo `json:"error"`
}

type entriesData struct {
	Scope   string           `json:"scope"`
	Entries []ordering.Entry `json:"entries"`
	Version string           `json:"version"`
}

type reorderData struct {
	Scope   string `json:"scope"`
	Updated int    `json:"updated"`
	Version string `json:"version"`
}

// Load implements Transport
func (c *HTTPClient) Load(ctx context.Context, resource, scope string) (Snapshot, error) {
	var ok envelope[entriesData]
	var failed envelope[struct{}]
	req := c.client.R().
		SetContext(ctx).
		SetPathParam("resource", resource).
		SetResult(&ok).
		SetError(&failed)
	if scope != "" {
		req.SetQueryParam("scope", scope)
	}

	resp, err := req.Get(orderPath)
	if err != nil {
		return Snapshot{}, &Error{Kind: KindTransport, Err: err}
	}
	if resp.IsError() {
		return Snapshot{}, responseError(resp, failed.Error)
	}
	return Snapshot{Scope: ok.Data.Scope, Entries: ok.Data.Entries, Version: ok.Data.Version}, nil
}

// Persist implements Transport
func (c *HTTPClient) Persist(ctx context.Context, resource, scope string, updates []ordering.Update, expectedVersion string) (string, error) {
	body := map[string]any{dto.BatchKey(resource): updates}
	if scope != "" {
		body["scope"] = scope
	}

	var ok envelope[reorderData]
	var failed envelope[struct{}]
	req := c.client.R().
		SetContext(ctx).
		SetPathParam("resource", resource).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&ok).
		SetError(&failed)
	if expectedVersion != "" {
		req.SetHeader("If-Match", dto.ETag(expectedVersion))
	}

	resp, err := req.Patch(orderPath)
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: err}
	}
	if resp.IsError() {
		return "", responseError(resp, failed.Error)
	}
	return ok.Data.Version, nil
}

func responseError(resp *resty.Response, info *dto.ErrorInfo) *Error {
	e := &Error{Kind: kindForStatus(resp.StatusCode()), Status: resp.StatusCode()}
	if info != nil {
		e.Code = info.Code
		e.Reason = info.Reason
		e.Message = info.Message
	} else {
		e.Message = http.StatusText(resp.StatusCode())
	}
	return e
}

func kindForStatus(status int) Kind {
	switch status {
	case http.StatusBadRequest, http.StatusUnprocessableEntity, http.StatusRequestEntityTooLarge:
		return KindValidation
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusConflict, http.StatusPreconditionFailed:
		return KindConflict
	default:
		return KindTransport
	}
}
