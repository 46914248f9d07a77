// Package workspace reads and writes saved query trees.
package workspace

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/Yamashou/gqlblock/check"
	"github.com/Yamashou/gqlblock/node"
	"github.com/Yamashou/gqlblock/template"
)

type Workspace struct {
	Queries []*Query `yaml:"queries"`
}

// Query is the tree attached to the root slot of one instance.
type Query struct {
	Name     string               `yaml:"name"`
	Instance string               `yaml:"instance"`
	Blocks   []*template.Template `yaml:"blocks"`
}

// Tracker keeps restored trees in step with their schemas.
type Tracker interface {
	TrackTree(root *node.Node) error
}

func Load(filename string) (*Workspace, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("unable to read workspace: %w", err)
	}

	var w Workspace
	if err := yaml.NewDecoder(bytes.NewReader(content), yaml.DisallowUnknownField()).Decode(&w); err != nil {
		return nil, fmt.Errorf("unable to parse workspace: %w", err)
	}

	seen := make(map[string]bool, len(w.Queries))
	for i, q := range w.Queries {
		if q == nil || q.Name == "" {
			return nil, fmt.Errorf("queries[%d]: 'name' is required", i)
		}
		if seen[q.Name] {
			return nil, fmt.Errorf("query %q: duplicated name", q.Name)
		}
		seen[q.Name] = true

		if q.Instance == "" {
			return nil, fmt.Errorf("query %q: 'instance' is required", q.Name)
		}
	}

	return &w, nil
}

func (w *Workspace) Save(filename string) error {
	content, err := yaml.Marshal(w)
	if err != nil {
		return fmt.Errorf("unable to encode workspace: %w", err)
	}

	if err := os.WriteFile(filename, content, 0o644); err != nil {
		return fmt.Errorf("unable to write workspace: %w", err)
	}

	return nil
}

func (w *Workspace) Query(name string) (*Query, bool) {
	for _, q := range w.Queries {
		if q.Name == name {
			return q, true
		}
	}

	return nil, false
}

// Restore builds the saved blocks under a root slot of the query's instance,
// tracks them and validates every attachment.
func (q *Query) Restore(tracker Tracker, c *check.Checker) (*node.Slot, error) {
	slot := node.NewRootSlot(q.Instance)

	var errs []error
	for _, block := range q.Blocks {
		n := node.Build(block)
		if n == nil {
			continue
		}
		node.Connect(slot, n)

		if err := tracker.TrackTree(n); err != nil {
			errs = append(errs, err)
		}
	}

	if err := c.Validate(slot); err != nil {
		errs = append(errs, err)
	}

	if err := errors.Join(errs...); err != nil {
		return slot, fmt.Errorf("restore query %q: %w", q.Name, err)
	}

	return slot, nil
}

// Capture records the blocks attached to slot.
func Capture(name string, slot *node.Slot) *Query {
	q := &Query{Name: name, Instance: slot.InstanceID}
	for _, n := range slot.Nodes() {
		q.Blocks = append(q.Blocks, node.Snapshot(n))
	}

	return q
}
