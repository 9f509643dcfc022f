// Package configuration parses the §6 configuration document: a JSON (or,
// as an alternate format, YAML) description of a script to load plus the
// scripts it depends on, resolved in dependency-first order with cycle
// detection.
package configuration

import (
	"encoding/json"

	"gopkg.in/yaml.v3"

	"github.com/gometacall/gometacall/internal/apperr"
)

// Document is one node of a configuration tree: a language tag, the
// script(s) it loads, its execution search paths, and the configuration
// documents it depends on (loaded before it).
type Document struct {
	LanguageID     string      `json:"language_id" yaml:"language_id"`
	Path           string      `json:"path" yaml:"path"`
	ExecutionPaths []string    `json:"execution_paths" yaml:"execution_paths"`
	Scripts        []string    `json:"scripts" yaml:"scripts"`
	Dependencies   []*Document `json:"dependencies" yaml:"dependencies"`
}

// ParseJSON decodes a configuration document from its JSON form.
//
// This is a fixed, statically-typed struct decode — unlike
// internal/serial's open-ended reflect.Value tree, there is a concrete Go
// type to decode into here, so the standard library's own encoding/json
// is the natural tool; gjson/sjson's path-based API earns its keep only
// where there is no static shape to decode against.
func ParseJSON(data []byte) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, apperr.Wrap(apperr.BadArgument, "configuration: decoding JSON document", err)
	}
	return &doc, nil
}

// ParseYAML decodes a configuration document from its YAML form, the
// alternate document format this runtime accepts alongside the
// specification's JSON shape.
func ParseYAML(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, apperr.Wrap(apperr.BadArgument, "configuration: decoding YAML document", err)
	}
	return &doc, nil
}

// ResolutionOrder walks doc's dependency tree depth-first and returns
// every document in dependency-first order (§6: "dependencies load
// first"), detecting cycles by tracking the path of each document
// currently on the DFS stack. A document revisiting its own Path
// (directly or through a dependency) is CyclicConfiguration.
func ResolutionOrder(doc *Document) ([]*Document, error) {
	const (
		unvisited = 0
		visiting  = 1
		visited   = 2
	)
	state := make(map[string]int)
	var order []*Document

	var visit func(d *Document) error
	visit = func(d *Document) error {
		key := d.Path
		switch state[key] {
		case visited:
			return nil
		case visiting:
			return apperr.New(apperr.CyclicConfiguration, "configuration: dependency cycle at %q", key)
		}
		state[key] = visiting
		for _, dep := range d.Dependencies {
			if err := visit(dep); err != nil {
				return err
			}
		}
		state[key] = visited
		order = append(order, d)
		return nil
	}

	if err := visit(doc); err != nil {
		return nil, err
	}
	return order, nil
}
