package client

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/vektah/gqlparser/v2/gqlerror"

	"github.com/Yamashou/gqlblock/graphqljson"
)

var (
	// ErrTransport covers connection failures and non-2xx statuses.
	ErrTransport = errors.New("graphql transport error")
	// ErrGraphQLResponse is wrapped by *ErrorResponse.
	ErrGraphQLResponse = errors.New("graphql response error")
)

// ErrorResponse carries the errors member of a GraphQL response.
type ErrorResponse struct {
	Errors gqlerror.List
}

func (e *ErrorResponse) Error() string {
	return e.Errors.Error()
}

func (e *ErrorResponse) Unwrap() error {
	return ErrGraphQLResponse
}

type response struct {
	Data   jsontext.Value `json:"data"`
	Errors jsontext.Value `json:"errors"`
}

// ParseResponse decodes a GraphQL HTTP response into out.
func ParseResponse(resp *http.Response, out any) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w: %w", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: http status %d: %s", ErrTransport, resp.StatusCode, truncate(body))
	}

	var r response
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("failed to decode response body %q: %w", truncate(body), err)
	}

	if len(r.Errors) > 0 && r.Errors.Kind() != 'n' {
		var list gqlerror.List
		if err := json.Unmarshal(r.Errors, &list); err != nil {
			return fmt.Errorf("failed to decode errors %q: %w", truncate(r.Errors), err)
		}
		if len(list) > 0 {
			return &ErrorResponse{Errors: list}
		}
	}

	if err := graphqljson.UnmarshalData(r.Data, out); err != nil {
		return fmt.Errorf("failed to decode data into response: %w", err)
	}

	return nil
}

func truncate(b []byte) string {
	const limit = 256
	if len(b) > limit {
		return string(b[:limit]) + "..."
	}

	return string(b)
}
