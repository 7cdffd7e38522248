package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/network/standard"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"

	"github.com/SINTEF/entities-service/internal/cli/types"
)

// APIClient wraps Hertz Client for HTTP communication with the entities service
type APIClient struct {
	client *client.Client
	server string
	token  string
}

// APIError is a non-success answer from the service
type APIError struct {
	Status  int
	Code    string
	Message string
	Details []types.Violation
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("HTTP %d", e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// NewAPIClient creates a new API client
func NewAPIClient(server, token string) (*APIClient, error) {
	normalizedServer, err := NormalizeServerURL(server)
	if err != nil {
		return nil, fmt.Errorf("invalid server URL: %w", err)
	}

	c, err := client.NewClient(
		client.WithDialTimeout(10*time.Second),
		client.WithMaxIdleConnDuration(60*time.Second),
		client.WithDialer(standard.NewDialer()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	return &APIClient{
		client: c,
		server: normalizedServer,
		token:  token,
	}, nil
}

// Server returns the normalized server URL
func (c *APIClient) Server() string {
	return c.server
}

// NormalizeServerURL adds a missing scheme and drops trailing slashes. A path prefix is kept.
func NormalizeServerURL(server string) (string, error) {
	if !strings.Contains(server, "://") {
		server = "http://" + server
	}

	u, err := url.Parse(server)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid server URL")
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	return fmt.Sprintf("%s://%s%s", u.Scheme, u.Host, strings.TrimRight(u.Path, "/")), nil
}

// do sends one request and returns the status and a copy of the body
func (c *APIClient) do(ctx context.Context, method, uri string, body []byte, auth bool) (int, []byte, error) {
	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer func() {
		protocol.ReleaseRequest(req)
		protocol.ReleaseResponse(resp)
	}()

	req.SetMethod(method)
	req.SetRequestURI(c.server + uri)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.SetContentTypeBytes([]byte("application/json"))
		req.SetBody(body)
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if err := c.client.Do(ctx, req, resp); err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}

	return resp.StatusCode(), append([]byte(nil), resp.Body()...), nil
}

// apiError decodes the error envelope when there is one
func apiError(status int, body []byte) error {
	var envelope types.APIResponse[any]
	if err := sonic.Unmarshal(body, &envelope); err != nil {
		return &APIError{Status: status}
	}
	return &APIError{
		Status:  status,
		Code:    envelope.Code,
		Message: envelope.Message,
		Details: envelope.Details,
	}
}

// Login performs user login
func (c *APIClient) Login(ctx context.Context, username, password string) (*types.APIResponse[types.LoginData], error) {
	bodyBytes, err := sonic.Marshal(types.LoginRequest{
		Username: username,
		Password: password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	status, body, err := c.do(ctx, consts.MethodPost, endpointLogin, bodyBytes, false)
	if err != nil {
		return nil, err
	}
	if status != consts.StatusOK {
		return nil, apiError(status, body)
	}

	var loginResp types.APIResponse[types.LoginData]
	if err := sonic.Unmarshal(body, &loginResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &loginResp, nil
}

// GetEntity fetches the document served at path below the server. found is false on 404.
func (c *APIClient) GetEntity(ctx context.Context, path string) (doc types.Document, found bool, err error) {
	status, body, err := c.do(ctx, consts.MethodGet, "/"+strings.TrimLeft(path, "/"), nil, false)
	if err != nil {
		return nil, false, err
	}

	switch status {
	case consts.StatusOK:
		if err := sonic.Unmarshal(body, &doc); err != nil {
			return nil, false, fmt.Errorf("failed to decode entity: %w", err)
		}
		return doc, true, nil
	case consts.StatusNotFound:
		return nil, false, nil
	default:
		return nil, false, apiError(status, body)
	}
}

// ListNamespaces lists the namespace URLs known to the service
func (c *APIClient) ListNamespaces(ctx context.Context) ([]string, error) {
	status, body, err := c.do(ctx, consts.MethodGet, endpointNamespaces, nil, false)
	if err != nil {
		return nil, err
	}
	if status != consts.StatusOK {
		return nil, apiError(status, body)
	}

	var resp types.APIResponse[[]string]
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return resp.Data, nil
}

// ListEntities lists entities in the given namespaces; none lists everything
func (c *APIClient) ListEntities(ctx context.Context, namespaces []string) ([]types.Document, error) {
	uri := endpointEntities
	if len(namespaces) > 0 {
		query := url.Values{"namespace": namespaces}
		uri += "?" + query.Encode()
	}

	status, body, err := c.do(ctx, consts.MethodGet, uri, nil, false)
	if err != nil {
		return nil, err
	}
	if status != consts.StatusOK {
		return nil, apiError(status, body)
	}

	var resp types.APIResponse[types.ListData[types.Document]]
	if err := sonic.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	return resp.Data.Items, nil
}

// CreateEntities uploads a batch; the service stores all of it or nothing
func (c *APIClient) CreateEntities(ctx context.Context, docs []types.Document) ([]types.Document, error) {
	bodyBytes, err := sonic.Marshal(docs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	status, body, err := c.do(ctx, consts.MethodPost, endpointCreate, bodyBytes, true)
	if err != nil {
		return nil, err
	}

	switch status {
	case consts.StatusCreated:
		var resp types.APIResponse[[]types.Document]
		if err := sonic.Unmarshal(body, &resp); err != nil {
			return nil, fmt.Errorf("failed to unmarshal response: %w", err)
		}
		return resp.Data, nil
	case consts.StatusNoContent:
		return nil, nil
	default:
		return nil, apiError(status, body)
	}
}
