package acl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/jsamuelsen/quote-slots/internal/adapters/clients"
	"github.com/jsamuelsen/quote-slots/internal/domain"
)

// quoteConfigDocument is the external configuration document. It never
// leaves this package.
type quoteConfigDocument struct {
	PinnedQuoteText string          `json:"pinnedQuoteText"`
	Quotes          []quoteDocument `json:"quotes"`
}

type quoteDocument struct {
	Text     string `json:"text"`
	Author   string `json:"author"`
	ImageURL string `json:"imageUrl"`
}

// BaseAdapter carries the HTTP client and service name shared by remote
// sources.
type BaseAdapter struct {
	client      *clients.Client
	serviceName string
}

// NewBaseAdapter creates a BaseAdapter.
func NewBaseAdapter(client *clients.Client, serviceName string) BaseAdapter {
	return BaseAdapter{client: client, serviceName: serviceName}
}

// ServiceName returns the name used in domain errors.
func (a *BaseAdapter) ServiceName() string {
	return a.serviceName
}

// Get requests path and returns the body of a 2xx response. Any other
// outcome is returned as a domain error.
func (a *BaseAdapter) Get(ctx context.Context, path, operation string) (io.ReadCloser, error) {
	resp, err := a.client.Get(ctx, path)
	if err != nil {
		return nil, MapHTTPError(nil, err, a.serviceName, operation, path)
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		defer func() { _ = resp.Body.Close() }()

		return nil, MapHTTPError(resp, nil, a.serviceName, operation, path)
	}

	return resp.Body, nil
}

// DecodeResponse decodes a JSON body into T and closes it.
func DecodeResponse[T any](body io.ReadCloser) (*T, error) {
	if body == nil {
		return nil, fmt.Errorf("response body is nil")
	}
	defer func() { _ = body.Close() }()

	var result T
	if err := json.NewDecoder(body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// ValidateRequired returns a validation error when value is blank.
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewValidationError(fieldName, "is required")
	}

	return nil
}

// Translator converts one external item into a domain value.
type Translator[External any, Domain any] func(ext *External) (*Domain, error)

// TranslateSlice applies translate to every item and stops at the first
// failure.
func TranslateSlice[E any, D any](items []E, translate Translator[E, D]) ([]*D, error) {
	result := make([]*D, 0, len(items))

	for i := range items {
		translated, err := translate(&items[i])
		if err != nil {
			return nil, fmt.Errorf("translating item %d: %w", i, err)
		}

		result = append(result, translated)
	}

	return result, nil
}

func translateQuote(ext *quoteDocument) (*domain.Quote, error) {
	if err := ValidateRequired(ext.Text, "text"); err != nil {
		return nil, err
	}

	return &domain.Quote{
		Text:     strings.TrimSpace(ext.Text),
		Author:   strings.TrimSpace(ext.Author),
		ImageURL: strings.TrimSpace(ext.ImageURL),
	}, nil
}

// translateConfig validates the document and builds the domain
// configuration. Every field is trimmed, so texts differing only in
// surrounding whitespace are duplicates and the pin matches after trimming.
// Quotes keep document order; a repeated text keeps its first occurrence.
func translateConfig(ctx context.Context, doc *quoteConfigDocument, logger *slog.Logger) (*domain.QuoteConfig, error) {
	if doc == nil {
		return nil, domain.NewValidationError("", "empty quote configuration")
	}

	translated, err := TranslateSlice(doc.Quotes, translateQuote)
	if err != nil {
		return nil, err
	}

	quotes := make([]domain.Quote, 0, len(translated))
	seen := make(map[string]struct{}, len(translated))

	for i, q := range translated {
		if _, dup := seen[q.Text]; dup {
			logger.WarnContext(ctx, "duplicate quote text ignored",
				slog.Int("index", i),
				slog.String("text", q.Text),
			)

			continue
		}

		seen[q.Text] = struct{}{}
		quotes = append(quotes, *q)
	}

	pinned := strings.TrimSpace(doc.PinnedQuoteText)
	if pinned != "" && domain.IndexOf(quotes, pinned) < 0 {
		logger.WarnContext(ctx, "pinned quote text matches no quote", slog.String("pinned", pinned))
	}

	return &domain.QuoteConfig{PinnedText: pinned, Quotes: quotes}, nil
}

// decodeConfig reads and translates a configuration document.
func decodeConfig(ctx context.Context, body io.ReadCloser, logger *slog.Logger) (*domain.QuoteConfig, error) {
	doc, err := DecodeResponse[quoteConfigDocument](body)
	if err != nil {
		return nil, domain.NewValidationError("", err.Error())
	}

	return translateConfig(ctx, doc, logger)
}
