// Package schematest loads the shared schema fixtures under testdata/schema.
package schematest

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/go-json-experiment/json"

	"github.com/Yamashou/gqlblock/introspection"
	"github.com/Yamashou/gqlblock/schema"
)

// Path returns the absolute path of a file under testdata/schema.
func Path(name string) string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "testdata", "schema", name)
}

// Response returns the raw HTTP body of the fixture introspection response.
func Response(tb testing.TB) []byte {
	tb.Helper()

	content, err := os.ReadFile(Path("introspection.json"))
	if err != nil {
		tb.Fatalf("failed to read introspection fixture: %v", err)
	}

	return content
}

func Introspection(tb testing.TB) *introspection.Query {
	tb.Helper()

	var res struct {
		Data introspection.Query `json:"data"`
	}
	if err := json.Unmarshal(Response(tb), &res); err != nil {
		tb.Fatalf("failed to decode introspection fixture: %v", err)
	}

	return &res.Data
}

// Load normalizes the fixture schema.
func Load(tb testing.TB) *schema.Schema {
	tb.Helper()

	s, err := schema.FromIntrospection(Introspection(tb))
	if err != nil {
		tb.Fatalf("failed to normalize fixture: %v", err)
	}

	return s
}
