package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/autoads/autoads-backend/pkg/config"
	"github.com/autoads/autoads-backend/pkg/logger"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	scope          = "https://www.googleapis.com/auth/devstorage.read_write"
	defaultAPIBase = "https://storage.googleapis.com"
	pingTimeout    = 5 * time.Second
	requestTimeout = 30 * time.Second
)

var errNotInitialized = errors.New("gcs client not initialized")

// Client talks to the GCS JSON API for a single bucket.
type Client struct {
	httpClient    *http.Client
	apiBase       string
	bucket        string
	publicBaseURL string
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient resolves credentials (inline JSON, file, or application default)
// and verifies the bucket is reachable.
func NewClient(ctx context.Context, cfg config.GCSConfig, gcp config.GCPConfig, logg *logger.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.BucketName) == "" {
		return nil, errors.New("gcs bucket name is required")
	}

	creds, err := credentials(ctx, gcp)
	if err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(ctx, creds.TokenSource)
	httpClient.Timeout = requestTimeout

	client := newClient(httpClient, defaultAPIBase, cfg.BucketName, cfg.PublicBaseURL)
	if err := client.Ping(ctx); err != nil {
		return nil, fmt.Errorf("gcs health check failed: %w", err)
	}

	if logg != nil {
		logg.Info(logg.WithField(ctx, "bucket", cfg.BucketName), "gcs client initialized")
	}
	return client, nil
}

func newClient(httpClient *http.Client, apiBase, bucket, publicBaseURL string) *Client {
	if strings.TrimSpace(publicBaseURL) == "" {
		publicBaseURL = defaultAPIBase
	}
	return &Client{
		httpClient:    httpClient,
		apiBase:       strings.TrimRight(apiBase, "/"),
		bucket:        strings.TrimSpace(bucket),
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

func credentials(ctx context.Context, gcp config.GCPConfig) (*google.Credentials, error) {
	switch {
	case strings.TrimSpace(gcp.CredentialsJSON) != "":
		creds, err := google.CredentialsFromJSON(ctx, []byte(gcp.CredentialsJSON), scope)
		if err != nil {
			return nil, fmt.Errorf("parsing gcp credentials json: %w", err)
		}
		return creds, nil
	case strings.TrimSpace(gcp.ApplicationCredentials) != "":
		raw, err := os.ReadFile(gcp.ApplicationCredentials)
		if err != nil {
			return nil, fmt.Errorf("reading credentials file: %w", err)
		}
		creds, err := google.CredentialsFromJSON(ctx, raw, scope)
		if err != nil {
			return nil, fmt.Errorf("parsing credentials file: %w", err)
		}
		return creds, nil
	default:
		creds, err := google.FindDefaultCredentials(ctx, scope)
		if err != nil {
			return nil, fmt.Errorf("finding default gcp credentials: %w", err)
		}
		return creds, nil
	}
}

// Bucket returns the configured bucket name.
func (c *Client) Bucket() string {
	if c == nil {
		return ""
	}
	return c.bucket
}

// Ping lists at most one object in the bucket.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil || c.httpClient == nil {
		return errNotInitialized
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	u := fmt.Sprintf("%s/storage/v1/b/%s/o?maxResults=1", c.apiBase, url.PathEscape(c.bucket))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req, http.StatusOK)
}

// Upload stores body under object and returns its public URL.
func (c *Client) Upload(ctx context.Context, object, contentType string, body io.Reader) (string, error) {
	if c == nil || c.httpClient == nil {
		return "", errNotInitialized
	}
	object = strings.TrimLeft(strings.TrimSpace(object), "/")
	if object == "" {
		return "", errors.New("object name is required")
	}

	q := url.Values{}
	q.Set("uploadType", "media")
	q.Set("name", object)
	u := fmt.Sprintf("%s/upload/storage/v1/b/%s/o?%s", c.apiBase, url.PathEscape(c.bucket), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return "", err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if err := c.do(req, http.StatusOK); err != nil {
		return "", fmt.Errorf("upload %s: %w", object, err)
	}
	return c.PublicURL(object), nil
}

// Delete removes object. A missing object is not an error.
func (c *Client) Delete(ctx context.Context, object string) error {
	if c == nil || c.httpClient == nil {
		return errNotInitialized
	}
	object = strings.TrimLeft(strings.TrimSpace(object), "/")
	if object == "" {
		return errors.New("object name is required")
	}
	u := fmt.Sprintf("%s/storage/v1/b/%s/o/%s", c.apiBase, url.PathEscape(c.bucket), url.PathEscape(object))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return err
	}
	if err := c.do(req, http.StatusNoContent, http.StatusOK, http.StatusNotFound); err != nil {
		return fmt.Errorf("delete %s: %w", object, err)
	}
	return nil
}

// PublicURL returns the browser-facing URL for object.
func (c *Client) PublicURL(object string) string {
	return fmt.Sprintf("%s/%s/%s", c.publicBaseURL, c.bucket, strings.TrimLeft(object, "/"))
}

// ObjectFromURL extracts the object name from a URL built by PublicURL. It
// returns false for URLs that point elsewhere.
func (c *Client) ObjectFromURL(raw string) (string, bool) {
	prefix := fmt.Sprintf("%s/%s/", c.publicBaseURL, c.bucket)
	if !strings.HasPrefix(raw, prefix) {
		return "", false
	}
	object := strings.TrimPrefix(raw, prefix)
	if i := strings.IndexAny(object, "?#"); i >= 0 {
		object = object[:i]
	}
	return object, object != ""
}

func (c *Client) do(req *http.Request, okStatuses ...int) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	for _, code := range okStatuses {
		if resp.StatusCode == code {
			_, _ = io.Copy(io.Discard, resp.Body)
			return nil
		}
	}
	b, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
	if len(b) > 0 {
		return fmt.Errorf("gcs request failed: %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	return fmt.Errorf("gcs request failed: %s", resp.Status)
}
