// Package fetch loads descriptor resources referenced by URL: ABIs, EIP-712
// schemas and enum definitions. Responses are cached on disk with a TTL.
//
// Two URL adaptations are applied transparently: github.com blob URLs are
// rewritten to their raw content form, and sourcify requests are rate
// limited with retry on throttling.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/clear-signing/erc7730/abi"
)

const (
	sourcifyHost = "repo.sourcify.dev"

	// environment overrides for the sourcify endpoint
	envSourcifyHost = "SOURCIFY_API_HOST"
	envSourcifyKey  = "SOURCIFY_API_KEY"
)

// Config tunes the fetch service. Zero values select the defaults.
type Config struct {
	CacheDir string        `yaml:"cacheDir"`
	CacheTTL time.Duration `yaml:"cacheTTL"`
	Timeout  time.Duration `yaml:"timeout"`
}

func (c Config) withDefaults() Config {
	if c.CacheDir == "" {
		if dir, err := os.UserCacheDir(); err == nil {
			c.CacheDir = filepath.Join(dir, "erc7730")
		}
	}
	if c.CacheTTL == 0 {
		c.CacheTTL = 7 * 24 * time.Hour
	}
	if c.Timeout == 0 {
		c.Timeout = 10 * time.Second
	}
	return c
}

// Service fetches and caches remote descriptor resources. It carries all
// its state explicitly; construct one per process and pass it down.
type Service struct {
	cfg      Config
	client   *http.Client
	sourcify *rate.Limiter
	log      *zap.Logger
}

// New builds a fetch service.
func New(cfg Config, log *zap.Logger) *Service {
	cfg = cfg.withDefaults()
	return &Service{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		sourcify: rate.NewLimiter(rate.Limit(10), 10),
		log:      log,
	}
}

// JSON fetches a URL and decodes the response body into v. file:// URLs are
// read from the local filesystem and bypass the cache.
func (s *Service) JSON(ctx context.Context, rawURL string, v any) error {
	data, err := s.Bytes(ctx, rawURL)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("unexpected response from %s: %w", rawURL, err)
	}
	return nil
}

// Bytes fetches a URL, consulting and populating the on-disk cache.
func (s *Service) Bytes(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q: %w", rawURL, err)
	}
	if u.Scheme == "file" {
		return os.ReadFile(u.Path)
	}

	rawURL = rewriteGithub(u)

	if data, ok := s.cached(rawURL); ok {
		s.log.Debug("cache hit", zap.String("url", rawURL))
		return data, nil
	}

	data, err := s.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	s.store(rawURL, data)
	return data, nil
}

// ContractABI looks up a verified contract's ABI on sourcify. Requests are
// rate limited; a throttling response is retried with backoff rather than
// surfaced immediately.
func (s *Service) ContractABI(ctx context.Context, chainID int64, address string) ([]abi.JSONEntry, error) {
	host := sourcifyHost
	if h := os.Getenv(envSourcifyHost); h != "" {
		host = h
	}
	u := fmt.Sprintf("https://%s/contracts/full_match/%d/%s/metadata.json", host, chainID, strings.ToLower(address))
	if key := os.Getenv(envSourcifyKey); key != "" {
		u += "?apikey=" + url.QueryEscape(key)
	}

	var data []byte
	backoff := time.Second
	for attempt := 0; ; attempt++ {
		if err := s.sourcify.Wait(ctx); err != nil {
			return nil, err
		}
		var err error
		data, err = s.get(ctx, u)
		if err == nil {
			break
		}
		if attempt >= 3 || !isThrottled(err) {
			return nil, err
		}
		s.log.Warn("sourcify throttled, retrying",
			zap.Int64("chainId", chainID),
			zap.String("address", address),
			zap.Duration("backoff", backoff))
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}

	var metadata struct {
		Output struct {
			ABI []abi.JSONEntry `json:"abi"`
		} `json:"output"`
	}
	if err := json.Unmarshal(data, &metadata); err != nil {
		return nil, fmt.Errorf("unexpected sourcify response for %s on chain %d: %w", address, chainID, err)
	}
	if metadata.Output.ABI == nil {
		return nil, fmt.Errorf("contract %s on chain %d is not verified on sourcify", address, chainID)
	}
	return metadata.Output.ABI, nil
}

type httpError struct {
	status int
	url    string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("GET %s: status %d", e.url, e.status)
}

func isThrottled(err error) bool {
	he, ok := err.(*httpError)
	return ok && he.status == http.StatusTooManyRequests
}

func (s *Service) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	s.log.Debug("fetching", zap.String("url", rawURL))
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &httpError{status: resp.StatusCode, url: rawURL}
	}
	return io.ReadAll(resp.Body)
}

// rewriteGithub turns a github.com blob URL into its raw content
// counterpart, so descriptors can reference files as seen in the browser.
func rewriteGithub(u *url.URL) string {
	if u.Host != "github.com" {
		return u.String()
	}
	rewritten := *u
	rewritten.Host = "raw.githubusercontent.com"
	rewritten.Path = strings.Replace(rewritten.Path, "/blob/", "/", 1)
	return rewritten.String()
}

func (s *Service) cachePath(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return filepath.Join(s.cfg.CacheDir, hex.EncodeToString(sum[:])+".json")
}

func (s *Service) cached(rawURL string) ([]byte, bool) {
	if s.cfg.CacheDir == "" {
		return nil, false
	}
	path := s.cachePath(rawURL)
	info, err := os.Stat(path)
	if err != nil || time.Since(info.ModTime()) > s.cfg.CacheTTL {
		return nil, false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

func (s *Service) store(rawURL string, data []byte) {
	if s.cfg.CacheDir == "" {
		return
	}
	if err := os.MkdirAll(s.cfg.CacheDir, 0o755); err != nil {
		s.log.Warn("cannot create cache directory", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.cachePath(rawURL), data, 0o644); err != nil {
		s.log.Warn("cannot write cache entry", zap.Error(err))
	}
}
