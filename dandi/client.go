// Package dandi is a minimal client for the DANDI archive REST API. It
// resolves dandiset assets to the content URLs the archive redirects to, so
// that a session file published on the archive can be streamed with the
// remote package without being downloaded first.
package dandi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultBaseURL is the production archive API.
const DefaultBaseURL = "https://api.dandiarchive.org/api"

// DraftVersion selects the mutable draft version of a dandiset.
const DraftVersion = "draft"

const maxRedirects = 5

// Asset is one file within a dandiset version.
type Asset struct {
	ID   string `json:"asset_id"`
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// Client talks to one archive instance.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different archive instance.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = u
	}
}

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

// NewClient returns a client for the production archive unless overridden.
func NewClient(opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		http:    http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// assetPage is one page of the asset listing endpoint.
type assetPage struct {
	Next    string  `json:"next"`
	Results []Asset `json:"results"`
}

// Assets lists every asset in the given dandiset version, following
// pagination.
func (c *Client) Assets(ctx context.Context, dandisetID, version string) ([]Asset, error) {
	next := fmt.Sprintf("%s/dandisets/%s/versions/%s/assets/?metadata=false",
		c.baseURL, url.PathEscape(dandisetID), url.PathEscape(version))

	var assets []Asset
	for next != "" {
		var page assetPage
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("listing assets of %s/%s: %w", dandisetID, version, err)
		}
		assets = append(assets, page.Results...)
		next = page.Next
	}
	return assets, nil
}

// AssetsMatching lists the assets whose path matches the glob pattern.
// Patterns use doublestar syntax, so "sub-001/**/*.nwb" works.
func (c *Client) AssetsMatching(ctx context.Context, dandisetID, version, pattern string) ([]Asset, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid asset pattern %q", pattern)
	}
	all, err := c.Assets(ctx, dandisetID, version)
	if err != nil {
		return nil, err
	}
	var matched []Asset
	for _, a := range all {
		ok, err := doublestar.Match(pattern, a.Path)
		if err != nil {
			return nil, fmt.Errorf("matching %q: %w", pattern, err)
		}
		if ok {
			matched = append(matched, a)
		}
	}
	return matched, nil
}

// AssetByPath resolves the asset at an exact path within a dandiset version.
func (c *Client) AssetByPath(ctx context.Context, dandisetID, version, path string) (*Asset, error) {
	u := fmt.Sprintf("%s/dandisets/%s/versions/%s/assets/?metadata=false&path=%s",
		c.baseURL, url.PathEscape(dandisetID), url.PathEscape(version), url.QueryEscape(path))

	var page assetPage
	if err := c.getJSON(ctx, u, &page); err != nil {
		return nil, fmt.Errorf("resolving asset %s: %w", path, err)
	}
	for i := range page.Results {
		if page.Results[i].Path == path {
			return &page.Results[i], nil
		}
	}
	return nil, fmt.Errorf("asset %s not found in %s/%s", path, dandisetID, version)
}

// ContentURL follows the asset download redirect chain and returns the final
// storage URL with its query string stripped, which is the stable form to
// hand to a range reader.
func (c *Client) ContentURL(ctx context.Context, asset *Asset) (string, error) {
	loc := fmt.Sprintf("%s/assets/%s/download/", c.baseURL, url.PathEscape(asset.ID))

	noFollow := &http.Client{
		Transport: c.http.Transport,
		Timeout:   c.http.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	for i := 0; i < maxRedirects; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodHead, loc, nil)
		if err != nil {
			return "", err
		}
		resp, err := noFollow.Do(req)
		if err != nil {
			return "", fmt.Errorf("resolving content URL for %s: %w", asset.Path, err)
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		switch {
		case resp.StatusCode >= 300 && resp.StatusCode < 400:
			next := resp.Header.Get("Location")
			if next == "" {
				return "", fmt.Errorf("redirect without Location for %s", asset.Path)
			}
			ref, err := url.Parse(next)
			if err != nil {
				return "", fmt.Errorf("bad redirect %q: %w", next, err)
			}
			base, err := url.Parse(loc)
			if err != nil {
				return "", err
			}
			loc = base.ResolveReference(ref).String()
		case resp.StatusCode == http.StatusOK:
			return stripQuery(loc)
		default:
			return "", fmt.Errorf("resolving content URL for %s: unexpected status %s", asset.Path, resp.Status)
		}
	}

	// The chain did not terminate; the last location is still usable.
	return stripQuery(loc)
}

// stripQuery removes the query string, which on object stores carries
// short-lived signatures.
func stripQuery(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String(), nil
}

// getJSON fetches u and decodes the body into v.
func (c *Client) getJSON(ctx context.Context, u string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: unexpected status %s", u, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("GET %s: decoding response: %w", u, err)
	}
	return nil
}
