// Package nodetest provides an in-memory schema source for tests.
package nodetest

import (
	"github.com/Yamashou/gqlblock/schema"
)

// Source serves fixed schemas and instance bindings.
type Source struct {
	Schemas   map[string]*schema.Schema
	Instances map[string]string
}

func (s *Source) Schema(endpoint string) (*schema.Schema, bool) {
	sch, ok := s.Schemas[endpoint]
	return sch, ok
}

func (s *Source) Endpoint(instanceID string) (string, bool) {
	endpoint, ok := s.Instances[instanceID]
	return endpoint, ok
}
