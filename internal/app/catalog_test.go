package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-slots/internal/domain"
	"github.com/jsamuelsen/quote-slots/internal/mocks"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleConfig() *domain.QuoteConfig {
	return &domain.QuoteConfig{
		PinnedText: "",
		Quotes: []domain.Quote{
			{Text: "Stay hungry, stay foolish.", Author: "Steve Jobs"},
			{Text: "Simplicity is prerequisite for reliability.", Author: "Edsger Dijkstra"},
			{Text: "Talk is cheap. Show me the code.", Author: "Linus Torvalds", ImageURL: "https://img.example/linus.jpg"},
		},
	}
}

func newSource(t *testing.T, cfg *domain.QuoteConfig, err error) *mocks.MockQuoteSource {
	t.Helper()

	source := mocks.NewMockQuoteSource(t)
	source.EXPECT().Load(mock.Anything).Return(cfg, err).Once()
	source.EXPECT().Describe().Return("configs/quotes.json").Maybe()

	return source
}

func TestNewCatalog_PanicsWithoutSource(t *testing.T) {
	assert.Panics(t, func() {
		NewCatalog(nil, discardLogger())
	})
}

func TestCatalog_BeforeLoad(t *testing.T) {
	catalog := NewCatalog(mocks.NewMockQuoteSource(t), nil)

	assert.Equal(t, CatalogLoading, catalog.State())
	assert.Nil(t, catalog.Quotes())
	assert.Empty(t, catalog.PinnedText())
	assert.NoError(t, catalog.Err())
	assert.ErrorIs(t, catalog.Check(context.Background()), errCatalogLoading)
	assert.Equal(t, CatalogCheckName, catalog.Name())
}

func TestCatalog_LoadSuccess(t *testing.T) {
	cfg := sampleConfig()
	cfg.PinnedText = cfg.Quotes[1].Text
	catalog := NewCatalog(newSource(t, cfg, nil), discardLogger())

	require.NoError(t, catalog.Load(context.Background()))

	assert.Equal(t, CatalogReady, catalog.State())
	assert.Equal(t, cfg.Quotes, catalog.Quotes())
	assert.Equal(t, cfg.Quotes[1].Text, catalog.PinnedText())
	assert.NoError(t, catalog.Check(context.Background()))

	// Second load is served from memory; the mock allows one call only.
	require.NoError(t, catalog.Load(context.Background()))
}

func TestCatalog_QuotesReturnsCopy(t *testing.T) {
	catalog := NewCatalog(newSource(t, sampleConfig(), nil), discardLogger())
	require.NoError(t, catalog.Load(context.Background()))

	quotes := catalog.Quotes()
	quotes[0].Text = "mutated"

	assert.Equal(t, "Stay hungry, stay foolish.", catalog.Quotes()[0].Text)
}

func TestCatalog_LoadFailureIsFatal(t *testing.T) {
	tests := []struct {
		name string
		cfg  *domain.QuoteConfig
		err  error
	}{
		{name: "source error", err: errors.New("open configs/quotes.json: no such file or directory")},
		{name: "nil configuration", cfg: nil, err: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			catalog := NewCatalog(newSource(t, tt.cfg, tt.err), discardLogger())

			err := catalog.Load(context.Background())

			require.Error(t, err)
			assert.True(t, domain.IsUnavailable(err))
			assert.Equal(t, FatalLoadMessage, domain.UserMessage(err))
			assert.Equal(t, CatalogFailed, catalog.State())
			assert.Nil(t, catalog.Quotes())

			checkErr := catalog.Check(context.Background())
			require.Error(t, checkErr)
			assert.Contains(t, checkErr.Error(), FatalLoadMessage)

			// The failure is remembered without another source call.
			assert.Equal(t, err, catalog.Load(context.Background()))
		})
	}
}
