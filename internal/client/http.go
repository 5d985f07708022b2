package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/alfredjeanlab/shipdesk/internal/model"
)

// DefaultTimeout bounds every non-streaming request.
const DefaultTimeout = 30 * time.Second

// HTTPClient implements ShipmentClient against the /v1 JSON API.
type HTTPClient struct {
	baseURL    string
	token      string
	actor      string
	httpClient *http.Client
}

// NewHTTPClient targets baseURL, e.g. "http://localhost:8080". A non-empty
// token is sent as a bearer token.
func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
}

// WithActor sets the name recorded as the author of edits persisted through
// UpdateShipmentRequest.
func (c *HTTPClient) WithActor(actor string) *HTTPClient {
	c.actor = actor
	return c
}

func (c *HTTPClient) BaseURL() string { return c.baseURL }

func (c *HTTPClient) Close() error { return nil }

func shipmentPath(id string, suffix ...string) string {
	return "/v1/shipments/" + url.PathEscape(id) + strings.Join(suffix, "")
}

func (c *HTTPClient) CreateShipment(ctx context.Context, req *CreateRequest) (*model.ShipmentRequest, error) {
	return call[model.ShipmentRequest](ctx, c, http.MethodPost, "/v1/shipments", req)
}

func (c *HTTPClient) GetShipment(ctx context.Context, id string) (*model.ShipmentRequest, error) {
	return call[model.ShipmentRequest](ctx, c, http.MethodGet, shipmentPath(id), nil)
}

func (c *HTTPClient) ListShipments(ctx context.Context, req *ListRequest) (*ListResponse, error) {
	path := "/v1/shipments"
	if q := req.values(); len(q) > 0 {
		path += "?" + q.Encode()
	}
	return call[ListResponse](ctx, c, http.MethodGet, path, nil)
}

// values encodes the non-zero parameters as a query string.
func (r *ListRequest) values() url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v != "" {
			q.Set(k, v)
		}
	}
	statuses := make([]string, len(r.Status))
	for i, s := range r.Status {
		statuses[i] = string(s)
	}
	set("status", strings.Join(statuses, ","))
	set("destination", r.Destination)
	set("owner_id", r.OwnerID)
	set("search", r.Search)
	set("sort", r.Sort)
	if r.IncludeDeleted {
		q.Set("include_deleted", "true")
	}
	if r.Limit > 0 {
		q.Set("limit", strconv.Itoa(r.Limit))
	}
	if r.Offset > 0 {
		q.Set("offset", strconv.Itoa(r.Offset))
	}
	return q
}

func (c *HTTPClient) UpdateShipment(ctx context.Context, id string, req *UpdateRequest) (*model.ShipmentRequest, error) {
	return call[model.ShipmentRequest](ctx, c, http.MethodPatch, shipmentPath(id), req)
}

// UpdateShipmentRequest persists a field delta for one record. It lets the
// client serve as the table dispatcher's persistence collaborator.
func (c *HTTPClient) UpdateShipmentRequest(ctx context.Context, id string, delta model.FieldDelta) error {
	_, err := c.UpdateShipment(ctx, id, &UpdateRequest{Fields: delta, UpdatedBy: c.actor})
	return err
}

func (c *HTTPClient) DeleteShipment(ctx context.Context, id, actor string) error {
	return c.do(ctx, http.MethodDelete, shipmentPath(id, actorQuery(actor)), nil, nil)
}

func (c *HTTPClient) UndeleteShipment(ctx context.Context, id, actor string) (*model.ShipmentRequest, error) {
	return call[model.ShipmentRequest](ctx, c, http.MethodPost, shipmentPath(id, "/undelete", actorQuery(actor)), nil)
}

func actorQuery(actor string) string {
	if actor == "" {
		return ""
	}
	return "?" + url.Values{"actor": {actor}}.Encode()
}

func (c *HTTPClient) CreateOwner(ctx context.Context, name string) (*model.Owner, error) {
	return call[model.Owner](ctx, c, http.MethodPost, "/v1/owners", map[string]string{"name": name})
}

func (c *HTTPClient) ListOwners(ctx context.Context) ([]*model.Owner, error) {
	resp, err := call[struct {
		Owners []*model.Owner `json:"owners"`
	}](ctx, c, http.MethodGet, "/v1/owners", nil)
	if err != nil {
		return nil, err
	}
	return resp.Owners, nil
}

// Health returns the server's reported status, "ok" when healthy.
func (c *HTTPClient) Health(ctx context.Context) (string, error) {
	resp, err := call[struct {
		Status string `json:"status"`
	}](ctx, c, http.MethodGet, "/v1/health", nil)
	if err != nil {
		return "", err
	}
	return resp.Status, nil
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// call performs a request and decodes the JSON response into a new T.
func call[T any](ctx context.Context, c *HTTPClient, method, path string, body any) (*T, error) {
	out := new(T)
	if err := c.do(ctx, method, path, body, out); err != nil {
		return nil, err
	}
	return out, nil
}

// do sends body as JSON when non-nil and decodes a successful response into
// out when non-nil.
func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		payload = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: read response: %w", method, path, err)
	}
	switch {
	case resp.StatusCode >= 400:
		return apiError(resp.StatusCode, data)
	case out == nil, resp.StatusCode == http.StatusNoContent:
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

func apiError(code int, body []byte) *APIError {
	var resp struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(body, &resp) == nil && resp.Error != "" {
		return &APIError{StatusCode: code, Message: resp.Error}
	}
	return &APIError{StatusCode: code, Message: strings.TrimSpace(string(body))}
}
