package l2l

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// DefaultPageSize is the page size used by GetAll when none is given.
const DefaultPageSize = 500

// Logger receives diagnostic messages from the client. A nil Logger means
// silent operation.
type Logger interface {
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Client issues requests against an L2L CloudDISPATCH API server. The auth
// token and result limit are injected into every request. Rate-limited
// requests are retried according to the retry policy; single-record lookups
// can be memoized through GetCached.
//
// The client is not safe for concurrent use; the tool is fully sequential.
type Client struct {
	http   *resty.Client
	auth   string
	retry  RetryPolicy
	logger Logger

	// cache maps path -> parameter key -> raw response data.
	// Owned by the client for the life of the process; never evicted.
	cache map[string]map[string]json.RawMessage
}

// NewClient creates a client for the API server at baseURL,
// e.g. https://customer.leading2lean.com/api/1.0/. The auth token is sent
// as a request parameter on every call, per the vendor contract.
func NewClient(baseURL, auth string, logger Logger) *Client {
	client := resty.New()
	client.SetBaseURL(baseURL)
	// Large date ranges can produce slow server-side queries.
	client.SetTimeout(10 * time.Minute)

	return &Client{
		http:   client,
		auth:   auth,
		retry:  RetryPolicy{DefaultDelay: 5 * time.Second},
		logger: logger,
		cache:  make(map[string]map[string]json.RawMessage),
	}
}

// Get performs a GET request against the given API path. On a success
// envelope it returns the raw data payload; if limit is 1 and the payload
// is a non-empty list, only the first element is returned. A non-success
// envelope (or empty data) is logged and reported as ok == false rather
// than an error. The error return is reserved for transport and decode
// failures, which are fatal to a run.
func (c *Client) Get(path string, params Params, limit int) (json.RawMessage, bool, error) {
	return c.do(http.MethodGet, path, params, limit)
}

// Post performs a POST request against the given API path. Parameters are
// sent as form data. Result handling matches Get.
func (c *Client) Post(path string, params Params, limit int) (json.RawMessage, bool, error) {
	return c.do(http.MethodPost, path, params, limit)
}

// GetAll pages through the given API path with increasing offsets,
// accumulating results until a page returns fewer than pageSize records or
// no data. Include every possible filter in params to decrease the load on
// the server.
func (c *Client) GetAll(path string, params Params, pageSize int) ([]json.RawMessage, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}

	var all []json.RawMessage
	offset := 0
	for {
		paged := make(Params, len(params)+1)
		for k, v := range params {
			paged[k] = v
		}
		paged["offset"] = strconv.Itoa(offset)

		data, ok, err := c.Get(path, paged, pageSize)
		if err != nil {
			return nil, err
		}
		if !ok {
			return all, nil
		}

		var page []json.RawMessage
		if err := json.Unmarshal(data, &page); err != nil {
			return nil, fmt.Errorf("decode page of %s: %w", path, err)
		}
		all = append(all, page...)

		if len(page) < pageSize {
			return all, nil
		}
		offset += len(page)
	}
}

// GetCached performs a single-record GET and memoizes the result by the
// exact parameter set. ONLY use this for point lookups by unique key or
// code: the first result is cached for the life of the process, so filters
// that could match multiple records would return silently stale data on a
// cache hit. The limit is hard coded to 1 to enforce this assumption.
func (c *Client) GetCached(path string, params Params) (json.RawMessage, bool, error) {
	key := cacheKey(params)
	if byKey, ok := c.cache[path]; ok {
		if data, hit := byKey[key]; hit {
			return data, data != nil, nil
		}
	}

	data, ok, err := c.Get(path, params, 1)
	if err != nil {
		return nil, false, err
	}
	if c.cache[path] == nil {
		c.cache[path] = make(map[string]json.RawMessage)
	}
	// Empty results are cached too, as nil entries.
	c.cache[path][key] = data
	return data, ok, nil
}

// GetOne performs a single-record GET and decodes the result into T.
func GetOne[T any](c *Client, path string, params Params) (T, bool, error) {
	var out T
	data, ok, err := c.Get(path, params, 1)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, false, fmt.Errorf("decode %s record: %w", path, err)
	}
	return out, true, nil
}

// GetPage performs a single GET capped at limit records and decodes the
// result list into []T. A non-success envelope yields a nil slice.
func GetPage[T any](c *Client, path string, params Params, limit int) ([]T, error) {
	data, ok, err := c.Get(path, params, limit)
	if err != nil || !ok {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode %s list: %w", path, err)
	}
	return out, nil
}

// GetAll pages through path like (*Client).GetAll and decodes every record
// into T.
func GetAll[T any](c *Client, path string, params Params, pageSize int) ([]T, error) {
	records, err := c.GetAll(path, params, pageSize)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(records))
	for _, rec := range records {
		var v T
		if err := json.Unmarshal(rec, &v); err != nil {
			return nil, fmt.Errorf("decode %s record: %w", path, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// GetCached performs a memoized point lookup and decodes the result into T.
// The point-lookup-only precondition of (*Client).GetCached applies.
func GetCached[T any](c *Client, path string, params Params) (T, bool, error) {
	var out T
	data, ok, err := c.GetCached(path, params)
	if err != nil || !ok {
		return out, false, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return out, false, fmt.Errorf("decode cached %s record: %w", path, err)
	}
	return out, true, nil
}

func (c *Client) do(method, path string, params Params, limit int) (json.RawMessage, bool, error) {
	merged := make(map[string]string, len(params)+2)
	for k, v := range params {
		merged[k] = v
	}
	merged["auth"] = c.auth
	merged["limit"] = strconv.Itoa(limit)

	for {
		var (
			resp *resty.Response
			err  error
		)
		switch method {
		case http.MethodPost:
			resp, err = c.http.R().SetFormData(merged).Post(path)
		default:
			resp, err = c.http.R().SetQueryParams(merged).Get(path)
		}
		if err != nil {
			return nil, false, fmt.Errorf("%s %s: %w", method, path, err)
		}

		if resp.StatusCode() == http.StatusTooManyRequests {
			delay := c.retry.Delay(resp.Header().Get("Retry-After"))
			c.warnf("WARNING: received status 429. retrying in %v.", delay)
			time.Sleep(delay)
			continue
		}

		c.infof("%s : %v : %s", method, resp.Time(), resp.Request.URL)
		return c.finish(resp, limit)
	}
}

// finish unwraps the response envelope shared by every endpoint.
func (c *Client) finish(resp *resty.Response, limit int) (json.RawMessage, bool, error) {
	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, false, fmt.Errorf("decode response from %s: %w", resp.Request.URL, err)
	}

	if !env.Success || emptyData(env.Data) {
		c.infof("%d: %s", resp.StatusCode(), resp.Body())
		return nil, false, nil
	}

	// Only return the top record if the request was for a single record.
	if limit == 1 {
		var list []json.RawMessage
		if err := json.Unmarshal(env.Data, &list); err == nil {
			if len(list) == 0 {
				return nil, false, nil
			}
			return list[0], true, nil
		}
	}

	return env.Data, true, nil
}

// emptyData reports whether a data payload counts as "no data".
func emptyData(data json.RawMessage) bool {
	switch strings.TrimSpace(string(data)) {
	case "", "null", "[]", "{}", `""`, "0", "false":
		return true
	}
	return false
}

// cacheKey derives the memoization key for a parameter set. Keys are
// sorted so the key is deterministic across runs.
func cacheKey(params Params) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(params)*2)
	for _, k := range keys {
		parts = append(parts, k, params[k])
	}
	return strings.Join(parts, "-")
}

func (c *Client) infof(format string, args ...any) {
	if c.logger != nil {
		c.logger.Infof(format, args...)
	}
}

func (c *Client) warnf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Warnf(format, args...)
	}
}
