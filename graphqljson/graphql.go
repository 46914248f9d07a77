package graphqljson

import (
	"fmt"
	"reflect"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
)

// UnmarshalData parses the GraphQL response payload contained in data and stores
// the result into v, which must be a non-nil pointer.
func UnmarshalData(data jsontext.Value, v any) error {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() || rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("decode graphql data: decode json: cannot decode into non-pointer %T", v)
	}

	if len(data) == 0 || data.Kind() == 'n' {
		return fmt.Errorf("decode graphql data: response has no data")
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode graphql data: decode json: %w", err)
	}

	return nil
}

// Quote renders s as a GraphQL string literal. GraphQL string escapes are a
// subset of JSON's, so JSON quoting yields a valid literal.
func Quote(s string) string {
	// invalid UTF-8 is replaced rather than rejected
	b, _ := jsontext.AppendQuote(nil, s)
	return string(b)
}
