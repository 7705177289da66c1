package catalog

import (
	"context"
	"errors"

	"github.com/jomei/notionapi"

	"github.com/pdesskyterra/vendor-tracking-app/internal/resilience"
	"github.com/pdesskyterra/vendor-tracking-app/pkg/notion"
)

// retryingClient decorates a notion.Client with exponential-backoff
// retries. Only transient failures (429, 5xx, network timeouts) are
// retried; validation and auth errors surface immediately.
type retryingClient struct {
	inner notion.Client
	cfg   resilience.RetryConfig
}

// WithRetry wraps client so every call retries transient Notion
// failures with the given config. ShouldRetry is always replaced by
// the Notion-aware classifier.
func WithRetry(client notion.Client, cfg resilience.RetryConfig) notion.Client {
	cfg.ShouldRetry = isRetryable
	return &retryingClient{inner: client, cfg: cfg}
}

func (c *retryingClient) config(op string) resilience.RetryConfig {
	cfg := c.cfg
	cfg.OnRetry = resilience.RetryLogger("notion", op)
	return cfg
}

func (c *retryingClient) GetDatabase(ctx context.Context, dbID string) (*notionapi.Database, error) {
	return resilience.DoVal(ctx, c.config("get_database"), func(ctx context.Context) (*notionapi.Database, error) {
		return c.inner.GetDatabase(ctx, dbID)
	})
}

func (c *retryingClient) QueryDatabase(ctx context.Context, dbID string, req *notionapi.DatabaseQueryRequest) (*notionapi.DatabaseQueryResponse, error) {
	return resilience.DoVal(ctx, c.config("query_database"), func(ctx context.Context) (*notionapi.DatabaseQueryResponse, error) {
		return c.inner.QueryDatabase(ctx, dbID, req)
	})
}

func (c *retryingClient) CreatePage(ctx context.Context, req *notionapi.PageCreateRequest) (*notionapi.Page, error) {
	return resilience.DoVal(ctx, c.config("create_page"), func(ctx context.Context) (*notionapi.Page, error) {
		return c.inner.CreatePage(ctx, req)
	})
}

func (c *retryingClient) UpdatePage(ctx context.Context, pageID string, req *notionapi.PageUpdateRequest) (*notionapi.Page, error) {
	return resilience.DoVal(ctx, c.config("update_page"), func(ctx context.Context) (*notionapi.Page, error) {
		return c.inner.UpdatePage(ctx, pageID, req)
	})
}

// isRetryable classifies Notion API errors by HTTP status and falls
// back to the generic transient check for transport-level failures.
func isRetryable(err error) bool {
	var apiErr *notionapi.Error
	if errors.As(err, &apiErr) {
		return resilience.IsTransientHTTPStatus(apiErr.Status)
	}
	return resilience.IsTransient(err)
}
