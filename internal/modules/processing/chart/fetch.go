package chart

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mx-space/landing/internal/pkg/cache"
	"go.uber.org/zap"
)

const (
	DefaultFetchTimeout = 10 * time.Second
	DefaultCacheTTL     = 5 * time.Minute
	defaultMaxBodyBytes = 5 << 20
)

var (
	sheetIDPattern     = regexp.MustCompile(`^/spreadsheets/d/([a-zA-Z0-9_-]+)`)
	publishedIDPattern = regexp.MustCompile(`^/spreadsheets/d/e/([a-zA-Z0-9_-]+)`)
	gidPattern         = regexp.MustCompile(`gid=([0-9]+)`)
)

// CSVExportURL rewrites a Google Sheets share or publish link into its CSV
// export endpoint. Other http(s) URLs are assumed to serve CSV already;
// Fetcher refuses the ones pointing at non-public hosts.
func CSVExportURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: invalid url: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return "", fmt.Errorf("%w: url must be http or https", ErrInvalidURL)
	}
	if u.Hostname() != "docs.google.com" {
		return u.String(), nil
	}

	gid := u.Query().Get("gid")
	if gid == "" {
		if m := gidPattern.FindStringSubmatch(u.Fragment); m != nil {
			gid = m[1]
		}
	}

	if m := publishedIDPattern.FindStringSubmatch(u.Path); m != nil {
		q := url.Values{"output": {"csv"}}
		if gid != "" {
			q.Set("gid", gid)
			q.Set("single", "true")
		}
		return "https://docs.google.com/spreadsheets/d/e/" + m[1] + "/pub?" + q.Encode(), nil
	}
	if m := sheetIDPattern.FindStringSubmatch(u.Path); m != nil {
		q := url.Values{"format": {"csv"}}
		if gid != "" {
			q.Set("gid", gid)
		}
		return "https://docs.google.com/spreadsheets/d/" + m[1] + "/export?" + q.Encode(), nil
	}
	return "", fmt.Errorf("%w: not a spreadsheet url", ErrInvalidURL)
}

// Fetcher downloads CSV tables and caches the parsed rows.
type Fetcher struct {
	client       *http.Client
	cache        *cache.Cache[[][]string]
	ttl          time.Duration
	maxBytes     int64
	allowPrivate bool
	logger       *zap.Logger
}

type FetcherOption func(*Fetcher)

func WithHTTPClient(client *http.Client) FetcherOption {
	return func(f *Fetcher) { f.client = client }
}

// WithPrivateNetworks lets the fetcher reach loopback and private hosts.
// Only meant for local development and tests.
func WithPrivateNetworks() FetcherOption {
	return func(f *Fetcher) { f.allowPrivate = true }
}

func WithCache(c *cache.Cache[[][]string], ttl time.Duration) FetcherOption {
	return func(f *Fetcher) {
		f.cache = c
		if ttl > 0 {
			f.ttl = ttl
		}
	}
}

func WithMaxBytes(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBytes = n
		}
	}
}

func WithLogger(logger *zap.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger.Named("ChartFetcher")
		}
	}
}

func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		client:   NewHTTPClient(DefaultFetchTimeout),
		ttl:      DefaultCacheTTL,
		maxBytes: defaultMaxBodyBytes,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch returns the rows of the table behind rawURL.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([][]string, error) {
	target, err := CSVExportURL(rawURL)
	if err != nil {
		return nil, err
	}
	if !f.allowPrivate {
		if err := checkPublicHost(target); err != nil {
			return nil, err
		}
	}
	if f.cache != nil {
		if rows, ok := f.cache.Get(target); ok {
			return rows, nil
		}
	}

	start := time.Now()
	rows, err := f.download(ctx, target)
	if err != nil {
		f.logger.Warn("fetch chart data failed", zap.String("url", target), zap.Error(err))
		return nil, err
	}
	f.logger.Debug("chart data fetched",
		zap.String("url", target), zap.Int("rows", len(rows)), zap.Duration("took", time.Since(start)))

	if f.cache != nil {
		f.cache.Set(target, rows, rowsCost(rows), f.ttl)
	}
	return rows, nil
}

func (f *Fetcher) download(ctx context.Context, target string) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9")
	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, errBlockedAddress) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidURL, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: upstream returned %s", ErrFetch, resp.Status)
	}
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt == "text/html" {
		return nil, fmt.Errorf("%w: upstream returned html, is the sheet shared publicly?", ErrFetch)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetch, err)
	}
	if int64(len(data)) > f.maxBytes {
		return nil, fmt.Errorf("%w: table exceeds %d bytes", ErrFetch, f.maxBytes)
	}
	return ParseCSV(bytes.NewReader(data))
}

// ParseCSV reads a whole CSV table. Rows may have differing widths.
func ParseCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse csv: %v", ErrFetch, err)
	}
	return rows, nil
}

func rowsCost(rows [][]string) int64 {
	var n int64
	for _, r := range rows {
		for _, c := range r {
			n += int64(len(c)) + 16
		}
	}
	return max(n, 1)
}
