package dify

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/dify-migrate/internal/core/domain"
	"github.com/custodia-labs/dify-migrate/internal/core/ports/driven"
	"github.com/custodia-labs/dify-migrate/internal/logger"
)

// Ensure Client implements the port.
var _ driven.InstanceClient = (*Client)(nil)

// Client talks to one Dify instance.
type Client struct {
	cfg domain.InstanceConfig
	log *logger.Sink

	tokenSource oauth2.TokenSource
	content     *http.Client
	limiter     *rate.Limiter

	maxRetries int
	retryDelay time.Duration

	insecureOnce sync.Once
	insecure     *http.Client

	// console session state, guarded by sessionMu
	sessionMu sync.Mutex
	console   *http.Client
	session   string
}

// NewClient creates a client for an instance. The configuration should be
// validated beforehand; log may be nil, in which case the default sink is
// used.
func NewClient(cfg domain.InstanceConfig, log *logger.Sink) *Client {
	if log == nil {
		log = logger.Default()
	}

	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.APIKey})
	content := oauth2.NewClient(context.Background(), ts)
	content.Timeout = DefaultTimeout

	return &Client{
		cfg:         cfg,
		log:         log,
		tokenSource: ts,
		content:     content,
		limiter:     rate.NewLimiter(rate.Every(RequestDelay), 1),
		maxRetries:  MaxRetries,
		retryDelay:  RetryDelay,
		console:     &http.Client{Timeout: ImportTimeout},
	}
}

// Factory builds clients sharing one log sink.
type Factory struct {
	Log *logger.Sink
}

// New implements driven.ClientFactory.
func (f Factory) New(cfg domain.InstanceConfig) driven.InstanceClient {
	return NewClient(cfg, f.Log)
}

// ListDatasets fetches one page of datasets.
func (c *Client) ListDatasets(ctx context.Context, page, limit int) (driven.DatasetPage, error) {
	if err := validatePage(page, limit); err != nil {
		return driven.DatasetPage{}, err
	}

	var resp datasetListResponse
	if err := c.request(ctx, http.MethodGet, epDatasets, pageQuery(page, limit), nil, &resp); err != nil {
		return driven.DatasetPage{}, err
	}

	out := driven.DatasetPage{HasMore: resp.HasMore}
	for _, d := range resp.Data {
		out.Datasets = append(out.Datasets, d.toDomain())
	}
	return out, nil
}

// ListAllDatasets walks every dataset page. The loop advances monotonically
// and stops only when the server reports no more pages.
func (c *Client) ListAllDatasets(ctx context.Context) ([]domain.Dataset, error) {
	var all []domain.Dataset
	for page := 1; ; page++ {
		p, err := c.ListDatasets(ctx, page, DefaultPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Datasets...)
		if !p.HasMore {
			break
		}
	}
	c.log.Debug("listed %d datasets from %s", len(all), c.cfg.BaseURL)
	return all, nil
}

// CreateDataset creates a knowledge base.
func (c *Client) CreateDataset(ctx context.Context, name, description string) (domain.Dataset, error) {
	body := createDatasetRequest{Name: name, Permission: "only_me", Description: description}

	var resp datasetDTO
	if err := c.request(ctx, http.MethodPost, epDatasets, nil, body, &resp); err != nil {
		return domain.Dataset{}, err
	}
	return resp.toDomain(), nil
}

// DeleteDataset removes a dataset by id.
func (c *Client) DeleteDataset(ctx context.Context, datasetID string) error {
	return c.request(ctx, http.MethodDelete, fmt.Sprintf(epDatasetDetail, datasetID), nil, nil, nil)
}

// ListDocuments fetches one page of a dataset's documents.
func (c *Client) ListDocuments(ctx context.Context, datasetID string, page, limit int) (driven.DocumentPage, error) {
	if err := validatePage(page, limit); err != nil {
		return driven.DocumentPage{}, err
	}

	var resp documentListResponse
	path := fmt.Sprintf(epDocuments, datasetID)
	if err := c.request(ctx, http.MethodGet, path, pageQuery(page, limit), nil, &resp); err != nil {
		return driven.DocumentPage{}, err
	}

	out := driven.DocumentPage{HasMore: resp.HasMore}
	for _, d := range resp.Data {
		out.Documents = append(out.Documents, d.toDomain())
	}
	return out, nil
}

// ListAllDocuments walks every document page of a dataset.
func (c *Client) ListAllDocuments(ctx context.Context, datasetID string) ([]domain.Document, error) {
	var all []domain.Document
	for page := 1; ; page++ {
		p, err := c.ListDocuments(ctx, datasetID, page, DefaultPageSize)
		if err != nil {
			return nil, err
		}
		all = append(all, p.Documents...)
		if !p.HasMore {
			break
		}
	}
	return all, nil
}

// ListSegments fetches all segments of a document in server order.
func (c *Client) ListSegments(ctx context.Context, datasetID, documentID string) ([]domain.Segment, error) {
	var resp segmentListResponse
	path := fmt.Sprintf(epSegments, datasetID, documentID)
	if err := c.request(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}

	segments := make([]domain.Segment, 0, len(resp.Data))
	for _, s := range resp.Data {
		segments = append(segments, s.toDomain())
	}
	return segments, nil
}

// CreateDocumentByText creates one document from combined text. The server
// re-chunks the text with its automatic processing rules.
func (c *Client) CreateDocumentByText(ctx context.Context, datasetID, name, text string) (domain.Document, error) {
	body := createDocumentRequest{
		Name:              name,
		Text:              text,
		IndexingTechnique: "high_quality",
		ProcessRule:       processRule{Mode: "automatic", Rules: map[string]any{}},
	}

	var resp createDocumentResponse
	path := fmt.Sprintf(epCreateByText, datasetID)
	if err := c.request(ctx, http.MethodPost, path, nil, body, &resp); err != nil {
		return domain.Document{}, err
	}
	return resp.Document.toDomain(), nil
}

// request executes one content-API call with the retry/backoff policy:
// up to maxRetries additional attempts on HTTP 500 with exponential backoff,
// immediate propagation for every other failure, and the token-bucket
// inter-request delay applied before each attempt.
func (c *Client) request(ctx context.Context, method, path string, query url.Values, body, out any) error {
	rawURL := c.cfg.BaseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}

		status, respBody, err := c.doOnce(ctx, method, rawURL, query, body)
		if err != nil {
			return err
		}

		if status >= 200 && status < 300 {
			if out != nil && len(respBody) > 0 {
				if err := json.Unmarshal(respBody, out); err != nil {
					return fmt.Errorf("decode response from %s: %w", rawURL, err)
				}
			}
			return nil
		}

		apiErr := &APIError{Status: status, Body: string(respBody), URL: rawURL}
		if status != http.StatusInternalServerError {
			return apiErr
		}
		lastErr = apiErr
		if attempt == c.maxRetries {
			break
		}

		wait := c.retryDelay << attempt
		c.log.Warn("500 from %s %s on attempt %d/%d, retrying in %s",
			method, rawURL, attempt+1, c.maxRetries+1, wait)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}

	return fmt.Errorf("after %d attempts: %w", c.maxRetries+1, lastErr)
}

// doOnce performs a single HTTP exchange, applying the TLS fallback when
// enabled. It returns the status and drained body; err is non-nil only for
// transport-level failures.
func (c *Client) doOnce(ctx context.Context, method, rawURL string, query url.Values, body any) (int, []byte, error) {
	resp, err := send(ctx, c.content, method, rawURL, query, body, nil)
	if err != nil {
		if !c.cfg.AllowInsecureFallback || !isCertError(err) {
			return 0, nil, &TransportError{Op: method + " " + rawURL, Err: err}
		}

		// Deliberate trust downgrade, logged loudly, one attempt only.
		c.log.Warn("TLS verification failed for %s; retrying once with verification disabled", rawURL)
		resp, err = send(ctx, c.insecureClient(), method, rawURL, query, body, nil)
		if err != nil {
			return 0, nil, &TransportError{Op: method + " " + rawURL, Err: err}
		}
	}

	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, &TransportError{Op: "read response from " + rawURL, Err: err}
	}
	return resp.StatusCode, respBody, nil
}

// insecureClient lazily builds the verification-disabled fallback client,
// keeping bearer auth through the same token source.
func (c *Client) insecureClient() *http.Client {
	c.insecureOnce.Do(func() {
		base := &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // explicit opt-in fallback
		}
		c.insecure = &http.Client{
			Transport: &oauth2.Transport{Source: c.tokenSource, Base: base},
			Timeout:   DefaultTimeout,
		}
	})
	return c.insecure
}

// send builds and executes one request. extraHeaders overrides defaults.
func send(ctx context.Context, hc *http.Client, method, rawURL string, query url.Values, body any, extraHeaders map[string]string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return nil, err
	}
	if query != nil {
		req.URL.RawQuery = query.Encode()
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}

	return hc.Do(req)
}

// isCertError reports whether err stems from certificate verification.
func isCertError(err error) bool {
	var certVerify *tls.CertificateVerificationError
	if errors.As(err, &certVerify) {
		return true
	}
	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return true
	}
	var hostname x509.HostnameError
	if errors.As(err, &hostname) {
		return true
	}
	var invalid x509.CertificateInvalidError
	return errors.As(err, &invalid)
}

func validatePage(page, limit int) error {
	if page < 1 {
		return fmt.Errorf("%w: page must be >= 1, got %d", domain.ErrInvalidInput, page)
	}
	if limit < 1 {
		return fmt.Errorf("%w: limit must be > 0, got %d", domain.ErrInvalidInput, limit)
	}
	return nil
}

func pageQuery(page, limit int) url.Values {
	return url.Values{
		"page":  []string{strconv.Itoa(page)},
		"limit": []string{strconv.Itoa(limit)},
	}
}
