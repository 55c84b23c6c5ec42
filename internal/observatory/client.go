package observatory

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultAPIURL is the public HTTP Observatory v1 API.
const DefaultAPIURL = "https://http-observatory.security.mozilla.org/api/v1"

// DefaultTimeout bounds a request whose AnalyzeRequest.Timeout is not positive.
const DefaultTimeout = 5 * time.Second

type AnalyzeRequest struct {
	APIURL  string
	Host    string
	Timeout time.Duration
	Hidden  bool
}

// Client triggers scans against the analyze endpoint.
type Client struct {
	HTTP           *http.Client
	Logger         *zap.Logger
	DefaultTimeout time.Duration
}

func NewClient(logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		HTTP:           &http.Client{},
		Logger:         logger,
		DefaultTimeout: DefaultTimeout,
	}
}

// Analyze makes exactly one POST to {APIURL}/analyze and returns the decoded
// scan. Any failure is logged and reported as a nil scan, which callers treat
// as "not ready".
func (c *Client) Analyze(ctx context.Context, r AnalyzeRequest) *Scan {
	endpoint := strings.TrimRight(r.APIURL, "/") + "/analyze"

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = c.DefaultTimeout
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	q := url.Values{}
	q.Set("host", r.Host)
	q.Set("hidden", strconv.FormatBool(r.Hidden))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+q.Encode(), nil)
	if err != nil {
		c.Logger.Error("observatory_request_error", zap.String("url", endpoint), zap.Error(err))
		return nil
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		c.Logger.Error("observatory_request_error", zap.String("url", endpoint), zap.Error(err))
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.Logger.Error("observatory_bad_status",
			zap.String("url", endpoint),
			zap.Int("status_code", resp.StatusCode),
		)
		return nil
	}

	var s Scan
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		c.Logger.Error("observatory_decode_error", zap.String("url", endpoint), zap.Error(err))
		return nil
	}
	return &s
}
