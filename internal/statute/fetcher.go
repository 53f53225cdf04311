package statute

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/ppiankov/hanrei/internal/cache"
	"github.com/ppiankov/hanrei/internal/util"
	"github.com/ppiankov/hanrei/internal/worker"
)

// DefaultAPIBaseURL is the e-Gov law data endpoint; the canonical id is appended
const DefaultAPIBaseURL = "https://elaws.e-gov.go.jp/api/1/lawdata/"

var (
	// ErrNotFound is returned when the API reports a non-zero result code
	ErrNotFound = errors.New("statute not found")
	// ErrRobotsDisallowed is returned when robots.txt forbids the request
	ErrRobotsDisallowed = errors.New("disallowed by robots.txt")
)

// FetcherConfig configures a Fetcher. Zero values select defaults.
type FetcherConfig struct {
	BaseURL    string
	HTTPClient *http.Client
	Timeout    time.Duration
	UserAgent  string
	MaxBytes   int64

	// Limiter throttles requests per host (optional)
	Limiter *worker.Limiter
	// Cache stores cleaned text keyed by canonical id (optional)
	Cache    cache.Cache
	CacheTTL time.Duration
	// Robots gates requests on robots.txt (optional)
	Robots *util.RobotsChecker
}

// Fetcher retrieves statute full text from the law data API.
// It never retries; a failure is reported to the caller once.
type Fetcher struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	maxBytes   int64
	limiter    *worker.Limiter
	cache      cache.Cache
	cacheTTL   time.Duration
	robots     *util.RobotsChecker
}

// NewFetcher creates a new Fetcher
func NewFetcher(cfg FetcherConfig) *Fetcher {
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{}
	}
	if cfg.Timeout > 0 {
		withTimeout := *client
		withTimeout.Timeout = cfg.Timeout
		client = &withTimeout
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultAPIBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}

	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 20_000_000
	}

	var c cache.Cache = cache.Nop{}
	if cfg.Cache != nil {
		c = cfg.Cache
	}

	return &Fetcher{
		httpClient: client,
		baseURL:    baseURL,
		userAgent:  cfg.UserAgent,
		maxBytes:   maxBytes,
		limiter:    cfg.Limiter,
		cache:      c,
		cacheTTL:   cfg.CacheTTL,
		robots:     cfg.Robots,
	}
}

// FetchStatuteText returns the cleaned prose of the statute with the given
// canonical identifier. It returns "" without error when the document has
// no sentence-terminated text.
func (f *Fetcher) FetchStatuteText(ctx context.Context, canonicalID string) (string, error) {
	canonicalID = strings.TrimSpace(canonicalID)
	if canonicalID == "" {
		return "", fmt.Errorf("empty canonical id")
	}

	key := cache.Key("statute", canonicalID)
	if cached, found := f.cache.Get(key); found {
		return string(cached), nil
	}

	rawURL := f.baseURL + url.PathEscape(canonicalID)

	if f.robots != nil {
		allowed, err := f.robots.Allowed(ctx, rawURL)
		if err != nil {
			return "", fmt.Errorf("robots check: %w", err)
		}
		if !allowed {
			return "", fmt.Errorf("%s: %w", rawURL, ErrRobotsDisallowed)
		}
	}

	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, rawURL); err != nil {
			return "", fmt.Errorf("rate limit: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}
	req.Header.Set("Accept", "application/xml,text/xml;q=0.9,*/*;q=0.8")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return "", fmt.Errorf("%s: %w", canonicalID, ErrNotFound)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	doc, err := parseLawData(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return "", err
	}
	if doc.code != "" && doc.code != "0" {
		return "", fmt.Errorf("%s: %w (code %s: %s)", canonicalID, ErrNotFound, doc.code, doc.message)
	}

	text := CleanText(doc.text())
	_ = f.cache.Set(key, []byte(text), f.cacheTTL)

	return text, nil
}

type lawData struct {
	sentences []string
	code      string
	message   string
}

// text is the document's sentence text before cleaning: the leading text of
// every element, trimmed, keeping only text that ends with "。", in document order
func (d *lawData) text() string {
	return strings.Join(d.sentences, "")
}

func parseLawData(r io.Reader) (*lawData, error) {
	dec := xml.NewDecoder(r)

	var (
		doc       lawData
		path      []string
		buf       strings.Builder
		capturing bool
		elements  int
	)

	// flush ends the leading text of the element on top of path
	flush := func() {
		if !capturing {
			return
		}
		capturing = false
		text := strings.TrimSpace(buf.String())
		buf.Reset()
		if text == "" {
			return
		}

		if n := len(path); n >= 2 && path[n-2] == "Result" {
			switch path[n-1] {
			case "Code":
				doc.code = text
			case "Message":
				doc.message = text
			}
		}

		if strings.HasSuffix(text, "。") {
			doc.sentences = append(doc.sentences, text)
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse law XML: %w", err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			flush()
			path = append(path, t.Name.Local)
			capturing = true
			elements++
		case xml.EndElement:
			flush()
			if len(path) > 0 {
				path = path[:len(path)-1]
			}
		case xml.CharData:
			if capturing {
				buf.Write(t)
			}
		}
	}

	if elements == 0 {
		return nil, fmt.Errorf("parse law XML: empty document")
	}
	if len(path) != 0 {
		return nil, fmt.Errorf("parse law XML: unexpected end of document")
	}

	return &doc, nil
}

var (
	bracketStripper = strings.NewReplacer("「", "", "」", "")
	// Parenthetical annotations. Nested parentheses are not supported: for
	// "（a（b）c）" only the inner "（b）" is removed.
	annotationPattern = regexp.MustCompile(`（[^（|^）]*）`)
)

// CleanText strips 「」 brackets and removes full-width parenthetical annotations
func CleanText(s string) string {
	return annotationPattern.ReplaceAllString(bracketStripper.Replace(s), "")
}
