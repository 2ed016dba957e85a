package external

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"semrel/internal/adapter/retry"
	"semrel/internal/domain"
)

// DefaultEndpoint is the local semantic parser pipeline returning DRS XML.
const DefaultEndpoint = "http://127.0.0.1:7777/raw/pipeline?format=xml"

// ClientConfig configures HTTPComplexityClient.
type ClientConfig struct {
	Endpoint      string
	Timeout       time.Duration
	RatePerSecond float64
	Retry         retry.Config
}

// HTTPComplexityClient asks a parser service for the DRS of a sentence and
// measures its size.
type HTTPComplexityClient struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	retrier  *retry.Retrier
	logger   *slog.Logger
}

func NewHTTPComplexityClient(cfg ClientConfig, logger *slog.Logger) *HTTPComplexityClient {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	if cfg.Retry.AttemptTimeout == 0 {
		cfg.Retry.AttemptTimeout = cfg.Timeout
	}

	return &HTTPComplexityClient{
		endpoint: cfg.Endpoint,
		client:   &http.Client{},
		limiter:  rate.NewLimiter(limit, 1),
		retrier:  retry.NewRetrier(cfg.Retry, isUnavailable, logger),
		logger:   logger,
	}
}

func isUnavailable(err error) bool {
	var unavailable *domain.ServiceUnavailableError
	return errors.As(err, &unavailable)
}

// Complexity returns the number of discourse referents plus conditions in
// the DRS of the whitespace-joined tokens.
func (c *HTTPComplexityClient) Complexity(ctx context.Context, tokens []string) (float64, error) {
	var complexity float64
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
		body, err := c.post(ctx, strings.Join(tokens, " "))
		if err != nil {
			return err
		}
		complexity, err = ParseComplexity(bytes.NewReader(body))
		if err != nil {
			return &domain.ServiceUnavailableError{Endpoint: c.endpoint, Err: err}
		}
		return nil
	})
	return complexity, err
}

func (c *HTTPComplexityClient) post(ctx context.Context, text string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &domain.ServiceUnavailableError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.ServiceUnavailableError{Endpoint: c.endpoint, Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &domain.ServiceUnavailableError{
			Endpoint: c.endpoint,
			Err:      fmt.Errorf("status %d: %s", resp.StatusCode, truncate(string(body), 200)),
		}
	}
	return body, nil
}

// ParseComplexity counts dr and cond elements anywhere in a DRS XML
// document. A document with neither is not a DRS.
func ParseComplexity(r io.Reader) (float64, error) {
	decoder := xml.NewDecoder(r)
	count := 0
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("invalid DRS XML: %w", err)
		}
		if start, ok := tok.(xml.StartElement); ok {
			switch start.Name.Local {
			case "dr", "cond":
				count++
			}
		}
	}
	if count == 0 {
		return 0, errors.New("response contains no DRS")
	}
	return float64(count), nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
