package registry

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/Yamashou/gqlblock/client"
	"github.com/Yamashou/gqlblock/introspection"
)

// FileScheme prefixes endpoints served from a local SDL file.
const FileScheme = "file://"

// Fetcher retrieves the raw introspection result of an endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string, header http.Header) (*introspection.Query, error)
}

type FetcherFunc func(ctx context.Context, endpoint string, header http.Header) (*introspection.Query, error)

func (f FetcherFunc) Fetch(ctx context.Context, endpoint string, header http.Header) (*introspection.Query, error) {
	return f(ctx, endpoint, header)
}

// DefaultFetcher introspects HTTP endpoints and reads file:// endpoints as SDL.
type DefaultFetcher struct {
	HTTPClient *http.Client
}

func (f DefaultFetcher) Fetch(ctx context.Context, endpoint string, header http.Header) (*introspection.Query, error) {
	if path, ok := strings.CutPrefix(endpoint, FileScheme); ok {
		return loadSDL(path)
	}

	httpClient := f.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	c := client.NewClient(endpoint, client.WithHTTPClient(httpClient), client.WithHTTPHeader(header))

	return c.Introspect(ctx)
}

func loadSDL(path string) (*introspection.Query, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open schema: %w", err)
	}

	doc, err := gqlparser.LoadSchema(&ast.Source{Name: path, Input: string(content)})
	if err != nil {
		return nil, fmt.Errorf("unable to parse schema %s: %w", path, err)
	}

	return introspection.FromAST(doc), nil
}
