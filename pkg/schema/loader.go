package schema

import (
	"context"
	"io/fs"
	"net/http"
	"time"
)

// Loader fetches a form document from a Source.
type Loader interface {
	Load(ctx context.Context, src Source) (Document, error)
}

// LoaderOptions configures the built-in loader implementation.
type LoaderOptions struct {
	// FileSystem backs SourceKindFS lookups.
	FileSystem fs.FS
	// HTTPClient backs SourceKindURL lookups when provided.
	HTTPClient *http.Client
	// AllowHTTPFallback enables URL loading with a default client when no
	// HTTPClient is supplied.
	AllowHTTPFallback bool
	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration
}
