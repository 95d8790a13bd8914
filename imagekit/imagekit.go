// Package imagekit lists hosted images from the ImageKit media library and
// signs client-side upload requests.
package imagekit

import (
	"context"
	"crypto/hmac"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/fwojciec/artdir"
	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
)

// Defaults for the ImageKit API.
const (
	DefaultBaseURL  = "https://api.imagekit.io"
	DefaultPageSize = 1000
	DefaultExpiry   = 30 * time.Minute
)

// File is a media library entry as returned by GET /v1/files.
type File struct {
	FileID    string    `json:"fileId"`
	Name      string    `json:"name"`
	FilePath  string    `json:"filePath"`
	URL       string    `json:"url"`
	FileType  string    `json:"fileType"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// ID returns the file name without its extension. Appraiser images are
// uploaded under the appraiser id, so this matches Appraiser.ID.
func (f *File) ID() string {
	return strings.TrimSuffix(f.Name, path.Ext(f.Name))
}

// Client talks to the ImageKit REST API.
type Client struct {
	privateKey string
	baseURL    string
	pageSize   int
	http       *retryablehttp.Client
	now        func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API host, e.g. a test server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(u, "/") }
}

// WithPageSize sets the number of files requested per page.
func WithPageSize(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithRetry sets the retry budget and backoff bounds.
func WithRetry(max int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.http.RetryMax = max
		c.http.RetryWaitMin = waitMin
		c.http.RetryWaitMax = waitMax
	}
}

// WithLogger routes retry diagnostics to logger. Without it the client is silent.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.http.Logger = logger
		}
	}
}

// WithClock overrides the time source used for upload expiry.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// NewClient creates a client authenticating with the account's private key.
func NewClient(privateKey string, opts ...Option) *Client {
	rc := retryablehttp.NewClient()
	rc.RetryWaitMin = 500 * time.Millisecond
	rc.RetryWaitMax = 4 * time.Second
	rc.RetryMax = 3
	rc.HTTPClient.Timeout = 30 * time.Second
	rc.Logger = nil

	c := &Client{
		privateKey: privateKey,
		baseURL:    DefaultBaseURL,
		pageSize:   DefaultPageSize,
		http:       rc,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListFiles returns every file under folder, paging with skip and limit
// until a short page is returned. An empty folder lists the whole library.
func (c *Client) ListFiles(ctx context.Context, folder string) ([]*File, error) {
	if c.privateKey == "" {
		return nil, artdir.Errorf(artdir.EINVALID, "ImageKit private key required")
	}

	var files []*File
	for skip := 0; ; skip += c.pageSize {
		page, err := c.listPage(ctx, folder, skip)
		if err != nil {
			return nil, err
		}
		files = append(files, page...)
		if len(page) < c.pageSize {
			return files, nil
		}
	}
}

func (c *Client) listPage(ctx context.Context, folder string, skip int) ([]*File, error) {
	q := url.Values{}
	if folder != "" {
		q.Set("path", folder)
	}
	q.Set("skip", strconv.Itoa(skip))
	q.Set("limit", strconv.Itoa(c.pageSize))
	u := c.baseURL + "/v1/files?" + q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.privateKey, "")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("listing files: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, artdir.Errorf(artdir.EINVALID, "ImageKit rejected the private key (HTTP %d)", resp.StatusCode)
	case resp.StatusCode >= 400:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<10))
		return nil, fmt.Errorf("imagekit error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page []*File
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding file list: %w", err)
	}
	return page, nil
}

// AuthParams are the values a browser needs to upload directly to ImageKit.
type AuthParams struct {
	Token     string `json:"token"`
	Expire    int64  `json:"expire"`
	Signature string `json:"signature"`
}

// AuthParams signs an upload request. An empty token is replaced by a
// random UUID and a zero expire by now plus DefaultExpiry. The signature
// is the hex HMAC-SHA1 of token followed by expire, keyed by the private key.
func (c *Client) AuthParams(token string, expire int64) AuthParams {
	if token == "" {
		token = uuid.NewString()
	}
	if expire == 0 {
		expire = c.now().Add(DefaultExpiry).Unix()
	}
	mac := hmac.New(sha1.New, []byte(c.privateKey))
	mac.Write([]byte(token + strconv.FormatInt(expire, 10)))
	return AuthParams{
		Token:     token,
		Expire:    expire,
		Signature: hex.EncodeToString(mac.Sum(nil)),
	}
}
