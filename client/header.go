package client

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-json-experiment/json"
)

// ParseHeaders reads a JSON object of header names to values. A value holding
// commas becomes one header value per element. An empty input yields no headers.
func ParseHeaders(headersJSON string) (http.Header, error) {
	header := http.Header{}
	if strings.TrimSpace(headersJSON) == "" {
		return header, nil
	}

	var raw map[string]string
	if err := json.Unmarshal([]byte(headersJSON), &raw); err != nil {
		return nil, fmt.Errorf("invalid headers %q: %w", headersJSON, err)
	}

	for name, value := range raw {
		for v := range strings.SplitSeq(value, ",") {
			header.Add(name, strings.TrimSpace(v))
		}
	}

	return header, nil
}
