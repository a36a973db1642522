package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	domainErrors "github.com/grocerline/basketd/internal/domain/errors"
	"github.com/grocerline/basketd/internal/domain/model"
)

// Client exposes operations to query the remote catalog. No retry logic lives
// here; retrying is the sync retrier's responsibility.
type Client interface {
	Fetch(ctx context.Context, kind model.ProductKind) ([]model.CatalogRecord, error)
}

// HTTPClient implements Client via HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

// containerDTO mirrors the catalog payload: a list of containers each holding
// a product batch.
type containerDTO struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Products []productDTO `json:"products"`
}

type productDTO struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	Price              float64 `json:"price"`
	Attribute          *string `json:"attribute,omitempty"`
	ShortDescription   *string `json:"shortDescription,omitempty"`
	ImageURL           *string `json:"imageURL,omitempty"`
	SquareThumbnailURL *string `json:"squareThumbnailURL,omitempty"`
}

// NewHTTPClient creates HTTP catalog client with default timeout.
func NewHTTPClient(baseURL string, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse catalog url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("catalog url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}, nil
}

func endpointFor(kind model.ProductKind) (string, error) {
	switch kind {
	case model.KindCatalogItem:
		return "/products", nil
	case model.KindSuggestedItem:
		return "/suggested-products", nil
	default:
		return "", fmt.Errorf("unknown product kind %q", kind)
	}
}

// Fetch retrieves one catalog segment and flattens it into records. An empty
// payload where products were expected is ErrBodyEmpty.
func (c *HTTPClient) Fetch(ctx context.Context, kind model.ProductKind) ([]model.CatalogRecord, error) {
	segment, err := endpointFor(kind)
	if err != nil {
		return nil, err
	}

	endpoint := *c.baseURL
	endpoint.Path = path.Join(endpoint.Path, segment)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, &domainErrors.FetchError{Kind: string(kind), Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domainErrors.FetchError{Kind: string(kind), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		c.logger.Error("catalog request failed",
			slog.String("kind", string(kind)),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(body)),
		)
		return nil, &domainErrors.FetchError{Kind: string(kind), Err: fmt.Errorf("catalog error: %s", resp.Status)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domainErrors.FetchError{Kind: string(kind), Err: err}
	}

	var containers []containerDTO
	if err := json.Unmarshal(body, &containers); err != nil {
		return nil, &domainErrors.FetchError{Kind: string(kind), Err: err}
	}

	var records []model.CatalogRecord
	for _, container := range containers {
		for _, dto := range container.Products {
			records = append(records, dto.toRecord())
		}
	}
	if len(records) == 0 {
		return nil, domainErrors.ErrBodyEmpty
	}
	return records, nil
}

func (dto productDTO) toRecord() model.CatalogRecord {
	attribute := ""
	switch {
	case dto.Attribute != nil:
		attribute = *dto.Attribute
	case dto.ShortDescription != nil:
		attribute = *dto.ShortDescription
	}

	imageURL := dto.ImageURL
	if imageURL == nil {
		imageURL = dto.SquareThumbnailURL
	}

	return model.CatalogRecord{
		ExternalID: dto.ID,
		Name:       strings.TrimSpace(dto.Name),
		Price:      decimal.NewFromFloat(dto.Price),
		Attribute:  strings.TrimSpace(attribute),
		ImageURL:   imageURL,
	}
}
