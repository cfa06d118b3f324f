package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goliatone/go-gridform/pkg/appctx"
	"github.com/goliatone/go-gridform/pkg/queryparam"
	"github.com/goliatone/go-gridform/pkg/reveal"
)

// Record is one decoded entity.
type Record = map[string]any

// Page is one page of a list response.
type Page struct {
	Items []Record `json:"items"`
	Total int      `json:"total"`
	Page  int      `json:"page"`
	Size  int      `json:"size"`
}

// List fetches one page of resource using the table query state.
func (c *Client) List(ctx context.Context, resource string, state queryparam.TableQueryState) (Page, error) {
	query := url.Values{}
	query.Set(queryparam.ParamPage, strconv.Itoa(state.Page))
	size := state.Size
	if !queryparam.ValidSize(size) {
		size = queryparam.DefaultSize
	}
	query.Set(queryparam.ParamSize, strconv.Itoa(size))
	if state.Sort != "" {
		query.Set(queryparam.ParamSort, state.Sort)
	}
	for key, value := range state.Filters {
		if strings.TrimSpace(value) != "" {
			query.Set(key, value)
		}
	}

	var page Page
	if err := c.do(ctx, http.MethodGet, resourcePath(resource), query, nil, &page); err != nil {
		return Page{}, err
	}
	if page.Size == 0 {
		page.Size = size
	}
	return page, nil
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, resource, id string) (Record, error) {
	var record Record
	if err := c.do(ctx, http.MethodGet, resourcePath(resource, id), nil, nil, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Create posts a new record and returns the stored representation.
func (c *Client) Create(ctx context.Context, resource string, payload map[string]any) (Record, error) {
	var record Record
	if err := c.do(ctx, http.MethodPost, resourcePath(resource), nil, payload, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Update replaces a record. version is the optimistic concurrency version
// read when the form opened; the backend answers 409 when it is stale.
func (c *Client) Update(ctx context.Context, resource, id string, version int64, payload map[string]any) (Record, error) {
	body := make(map[string]any, len(payload)+1)
	for key, value := range payload {
		body[key] = value
	}
	if version > 0 {
		body["version"] = version
	}
	var record Record
	if err := c.do(ctx, http.MethodPut, resourcePath(resource, id), nil, body, &record); err != nil {
		return nil, err
	}
	return record, nil
}

// Delete removes each id in turn. Every id is attempted; the failures are
// joined.
func (c *Client) Delete(ctx context.Context, resource string, ids ...string) error {
	var errs []error
	for _, id := range ids {
		if err := c.do(ctx, http.MethodDelete, resourcePath(resource, id), nil, nil, nil); err != nil {
			errs = append(errs, fmt.Errorf("apiclient: delete %s/%s: %w", resource, id, err))
		}
	}
	return errors.Join(errs...)
}

// Reveal fetches the unmasked value of a sensitive field.
func (c *Client) Reveal(ctx context.Context, resource, id, field string) (string, error) {
	var out struct {
		Value string `json:"value"`
	}
	query := url.Values{"field": {field}}
	if err := c.do(ctx, http.MethodGet, resourcePath(resource, id, "reveal"), query, nil, &out); err != nil {
		return "", err
	}
	return out.Value, nil
}

// RevealFetcher adapts Reveal for resource into a reveal.Fetcher. The user is
// carried by the bearer token.
func (c *Client) RevealFetcher(resource string) reveal.Fetcher {
	return reveal.FetcherFunc(func(ctx context.Context, _ appctx.User, recordID, field string) (string, error) {
		return c.Reveal(ctx, resource, recordID, field)
	})
}
