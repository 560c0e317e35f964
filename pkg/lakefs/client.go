package lakefs

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// APIPrefix is the REST API root under the server URL.
const APIPrefix = "/api/v1"

// DefaultRegion is the signing region used for the S3 gateway. lakeFS
// ignores it but the SDK requires one.
const DefaultRegion = "stub"

// DefaultPageSize is the page size requested from list endpoints.
const DefaultPageSize = 1000

// Client talks to one lakeFS server. It is safe for concurrent use.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// APIKey, when set, is forwarded as the apiKey header on REST calls.
	APIKey string
	Region string

	// PageSize bounds list requests.
	PageSize int

	mu          sync.RWMutex
	accessKeyID string
	secretKey   string
	gateway     *s3.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client. It is used for both the
// REST API and the S3 gateway.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.HTTPClient = hc }
}

// WithAPIKey sets the apiKey header sent on REST calls.
func WithAPIKey(key string) Option {
	return func(c *Client) { c.APIKey = key }
}

// WithRegion overrides DefaultRegion. An empty region keeps the default.
func WithRegion(region string) Option {
	return func(c *Client) {
		if region != "" {
			c.Region = region
		}
	}
}

// WithPageSize overrides DefaultPageSize.
func WithPageSize(n int) Option {
	return func(c *Client) { c.PageSize = n }
}

// NewClient creates a client for the lakeFS server at baseURL. Credentials
// are set separately with SetCredentials.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 5 * time.Minute,
		},
		Region:   DefaultRegion,
		PageSize: DefaultPageSize,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// SetCredentials installs the access key pair used for both the REST API
// and the S3 gateway, replacing any previous pair.
func (c *Client) SetCredentials(accessKeyID, secretAccessKey string) {
	gw := s3.New(s3.Options{
		Region:       c.Region,
		BaseEndpoint: aws.String(c.BaseURL),
		UsePathStyle: true,
		HTTPClient:   c.HTTPClient,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(accessKeyID, secretAccessKey, ""),
		),
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	c.accessKeyID = accessKeyID
	c.secretKey = secretAccessKey
	c.gateway = gw
}

// Connected reports whether credentials have been set.
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.gateway != nil
}

// AccessKeyID returns the access key currently in use, or "".
func (c *Client) AccessKeyID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.accessKeyID
}

func (c *Client) basicAuth() (string, string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.gateway == nil {
		return "", "", ErrNotConnected
	}
	return c.accessKeyID, c.secretKey, nil
}

func (c *Client) gatewayClient() (*s3.Client, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.gateway == nil {
		return nil, ErrNotConnected
	}
	return c.gateway, nil
}
