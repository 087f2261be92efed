package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tomnomnom/linkheader"
	"go.uber.org/zap"
)

// getAll fetches every page of a list endpoint by following rel="next" links. Links that
// leave the configured host are refused so the token is never sent elsewhere.
func getAll[T any](ctx context.Context, c *Client, operation, path string, query url.Values) ([]T, error) {
	if query == nil {
		query = url.Values{}
	}
	if query.Get("per_page") == "" {
		query.Set("per_page", strconv.Itoa(c.perPage))
	}

	var out []T
	next := c.endpoint(path, query)
	for page := 1; next != ""; page++ {
		if page > maxPages {
			return nil, fmt.Errorf("%s: more than %d pages", operation, maxPages)
		}
		resp, err := c.do(ctx, operation, http.MethodGet, next, nil, "")
		if err != nil {
			return nil, err
		}
		var items []T
		err = json.NewDecoder(resp.Body).Decode(&items)
		_ = resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("%s: decode page %d: %w", operation, page, err)
		}
		out = append(out, items...)

		next, err = c.nextLink(resp.Header)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", operation, err)
		}
		c.logger.Debug("fetched page", zap.String("operation", operation), zap.Int("page", page), zap.Int("items", len(items)))
	}
	return out, nil
}

func (c *Client) nextLink(header http.Header) (string, error) {
	links := linkheader.ParseMultiple(header.Values("Link")).FilterByRel("next")
	if len(links) == 0 {
		return "", nil
	}
	next, err := c.base.Parse(links[0].URL)
	if err != nil {
		return "", fmt.Errorf("invalid next link %q", links[0].URL)
	}
	if next.Host != c.base.Host {
		return "", fmt.Errorf("next link points to foreign host %q", next.Host)
	}
	return next.String(), nil
}
