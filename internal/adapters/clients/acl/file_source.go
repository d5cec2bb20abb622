package acl

import (
	"context"
	"log/slog"
	"os"

	"github.com/jsamuelsen/quote-slots/internal/domain"
	"github.com/jsamuelsen/quote-slots/internal/ports"
)

// FileSource loads the quote configuration from a local JSON file.
type FileSource struct {
	path   string
	logger *slog.Logger
}

var _ ports.QuoteSource = (*FileSource)(nil)

// NewFileSource creates a FileSource for path.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}

	return &FileSource{
		path:   path,
		logger: logger.With(slog.String("component", "acl.FileSource")),
	}
}

// Load reads and translates the file. A missing or unreadable file is
// Unavailable; malformed JSON or an empty quote text is Validation.
func (s *FileSource) Load(ctx context.Context) (*domain.QuoteConfig, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, domain.NewUnavailableError("quote-config", err.Error())
	}

	return decodeConfig(ctx, f, s.logger)
}

// Describe returns the file path.
func (s *FileSource) Describe() string {
	return s.path
}
