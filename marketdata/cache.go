// Package marketdata fetches and caches market prices for valuing open
// positions.
package marketdata

import (
	"bufio"
	"bytes"
	"crypto/sha1"
	"fmt"
	"log"
	"net/http"
	"net/http/httputil"
	"os"
	"path/filepath"
	"time"

	"github.com/hzheng/smartrade/date"
)

// diskCache is a disk cache for HTTP responses. The cache key includes the
// current day so entries expire daily.
type diskCache struct {
	dir  string
	base http.RoundTripper
}

func (c *diskCache) RoundTrip(req *http.Request) (*http.Response, error) {
	key := fmt.Sprintf("%s %s %s", date.Today(), req.Method, req.URL)
	key = fmt.Sprintf("%x", sha1.Sum([]byte(key)))

	if resp, err := c.get(key, req); err == nil { // cache hit
		return resp, nil
	}
	resp, err := c.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	log.Printf("%v %v%v %v", req.Method, req.URL.Host, req.URL.Path, resp.Status)
	if resp.StatusCode >= 300 {
		return resp, nil
	}
	if err := c.put(key, resp); err != nil {
		log.Printf("cache write err (ignored): %v", err)
	}
	return resp, nil
}

func (c *diskCache) get(key string, req *http.Request) (*http.Response, error) {
	content, err := os.ReadFile(filepath.Join(c.dir, key))
	if err != nil {
		return nil, err
	}
	return http.ReadResponse(bufio.NewReader(bytes.NewBuffer(content)), req)
}

func (c *diskCache) put(key string, resp *http.Response) error {
	content, err := httputil.DumpResponse(resp, true)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.dir, key), content, 0o644)
}

// retrying retries rate-limited and failing requests with exponential
// backoff. Free market data plans throttle aggressively.
type retrying struct {
	base    http.RoundTripper
	retries int
}

func (r *retrying) RoundTrip(req *http.Request) (*http.Response, error) {
	var resp *http.Response
	var err error
	for attempt := 0; ; attempt++ {
		resp, err = r.base.RoundTrip(req)
		if err == nil && resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode < 500 {
			return resp, nil
		}
		if attempt >= r.retries {
			return resp, err
		}
		if resp != nil {
			resp.Body.Close()
		}
		wait := time.Second << attempt
		log.Printf("retrying %v%v in %v", req.URL.Host, req.URL.Path, wait)
		time.Sleep(wait)
	}
}

// newClient builds the HTTP client: daily disk cache in cacheDir over a
// retrying transport. An empty cacheDir uses the system temp folder.
func newClient(cacheDir string) *http.Client {
	if cacheDir == "" {
		cacheDir = os.TempDir()
	} else if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		log.Printf("cannot create cache folder %q, using %q: %v", cacheDir, os.TempDir(), err)
		cacheDir = os.TempDir()
	}
	return &http.Client{
		Transport: &diskCache{dir: cacheDir, base: &retrying{base: http.DefaultTransport, retries: 3}},
	}
}
