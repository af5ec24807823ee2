// Package indico talks to an Indico instance over its HTTP APIs: the
// documented "export" API for reading event data, the per-event "api"
// endpoints, and the undocumented "manage" endpoints for writes. See
// https://docs.getindico.io/en/stable/http-api/access/ for the read side.
// The manage endpoints come with no stability guarantees.
package indico

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"

	"inditools/metric"
)

// HTTPClient represents the functionality we need from an *http.Client, or
// similar.
type HTTPClient interface {
	Do(*http.Request) (*http.Response, error)
}

// Client is an API client scoped to one event. The token must have the
// "Classic API" read scope for the export endpoints and full management
// scope for attachment updates.
type Client struct {
	instanceURL string
	eventID     int
	apiToken    string
	timezone    string

	hc HTTPClient
}

// NewClient returns a client for the given event. Pass an empty timezone to
// let the instance pick, and a nil HTTPClient for http.DefaultClient.
func NewClient(instanceURL string, eventID int, apiToken, timezone string, hc HTTPClient) *Client {
	if hc == nil {
		hc = http.DefaultClient
	}
	return &Client{
		instanceURL: instanceURL,
		eventID:     eventID,
		apiToken:    apiToken,
		timezone:    timezone,
		hc:          hc,
	}
}

// joinURL glues path elements onto the instance URL, tolerating stray
// slashes on either side of each element.
func (c *Client) joinURL(elems ...string) string {
	parts := make([]string, 0, len(elems)+1)
	parts = append(parts, strings.TrimRight(c.instanceURL, "/"))
	for _, elem := range elems {
		parts = append(parts, strings.Trim(elem, "/"))
	}
	return strings.Join(parts, "/")
}

func (c *Client) do(req *http.Request, api string) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.apiToken)
	metric.APIRequests.WithLabelValues(api).Inc()

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.URL)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(err, "reading response of %s %s", req.Method, req.URL)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, errors.Errorf("%s %s: unexpected status %s", req.Method, req.URL, resp.Status)
	}
	return body, nil
}

// exportGet makes a GET request to the "export" API,
// eg https://indico.global/export/event/xxxxx.json?x=y
func (c *Client) exportGet(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	apiURL := c.joinURL(endpoint, fmt.Sprintf("%d.json", c.eventID))

	query := url.Values{
		"occ":     []string{"yes"}, // include the "occurrences" list
		"nocache": []string{"yes"}, // we always want the latest data
	}
	if c.timezone != "" {
		query.Set("tz", c.timezone)
	}
	for key, values := range params {
		query[key] = values
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "exportGet")
	}
	return c.do(req, "export")
}

// apiGet makes a GET request to the "api" API (don't ask why they called it
// that), eg https://indico.global/event/xxxxx/api/xxxxx
func (c *Client) apiGet(ctx context.Context, endpoint string) ([]byte, error) {
	apiURL := c.joinURL(fmt.Sprintf("event/%d", c.eventID), endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, errors.Wrap(err, "apiGet")
	}
	return c.do(req, "api")
}

// managePost makes a form-encoded POST request to the internal "manage"
// API, eg https://indico.global/event/xxxxx/manage/xxxxx
func (c *Client) managePost(ctx context.Context, endpoint string, form url.Values) ([]byte, error) {
	apiURL := c.joinURL(fmt.Sprintf("event/%d", c.eventID), endpoint)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, errors.Wrap(err, "managePost")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, "manage")
}
