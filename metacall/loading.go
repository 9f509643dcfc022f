package metacall

import (
	"os"

	"github.com/gometacall/gometacall/internal/configuration"
	"github.com/gometacall/gometacall/internal/loader"
)

// ExecutionPath registers an extra search path a tagged loader should
// consult when resolving relative script paths (§6's execution_path()).
func (r *Runtime) ExecutionPath(tag, path string) error {
	return r.loaders.ExecutionPath(tag, path)
}

// LoadFromFile loads every path in paths through tag's loader and returns
// the resulting handle.
func (r *Runtime) LoadFromFile(tag string, paths []string) (*loader.Handle, error) {
	return r.loaders.LoadFromFile(tag, paths)
}

// LoadFromMemory loads buffer (already in memory, never touching disk)
// through tag's loader under the synthetic identity name.
func (r *Runtime) LoadFromMemory(tag, name, buffer string) (*loader.Handle, error) {
	return r.loaders.LoadFromMemory(tag, name, buffer)
}

// LoadFromPackage loads a self-contained package directory (e.g. a
// directory of scripts plus a manifest) through tag's loader.
func (r *Runtime) LoadFromPackage(tag, path string) (*loader.Handle, error) {
	return r.loaders.LoadFromPackage(tag, path)
}

// LoadFromConfigurationFile reads a JSON or YAML configuration document
// from path, resolves its dependency tree in dependency-first order, and
// loads every document's scripts in that order, returning the handle of
// the root document's load.
//
// Format is picked from path's extension: ".yaml"/".yml" decodes as
// YAML, anything else as JSON — the specification's configuration
// document is JSON-shaped, YAML is this runtime's alternate accepted
// format (§6).
func (r *Runtime) LoadFromConfigurationFile(path string) (*loader.Handle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return r.LoadFromConfigurationBytes(data, isYAMLPath(path))
}

// LoadFromConfigurationBytes parses a configuration document already in
// memory and loads its dependency tree.
func (r *Runtime) LoadFromConfigurationBytes(data []byte, yaml bool) (*loader.Handle, error) {
	var (
		doc *configuration.Document
		err error
	)
	if yaml {
		doc, err = configuration.ParseYAML(data)
	} else {
		doc, err = configuration.ParseJSON(data)
	}
	if err != nil {
		return nil, err
	}

	order, err := configuration.ResolutionOrder(doc)
	if err != nil {
		return nil, err
	}

	var last *loader.Handle
	for _, d := range order {
		for _, path := range d.ExecutionPaths {
			if err := r.loaders.ExecutionPath(d.LanguageID, path); err != nil {
				return nil, err
			}
		}
		h, err := r.loaders.LoadFromFile(d.LanguageID, d.Scripts)
		if err != nil {
			return nil, err
		}
		last = h
	}
	return last, nil
}

func isYAMLPath(path string) bool {
	n := len(path)
	return n >= 5 && path[n-5:] == ".yaml" || n >= 4 && path[n-4:] == ".yml"
}

// Handle looks up a handle already loaded under tag with the given
// script identity.
func (r *Runtime) Handle(tag, identity string) (*loader.Handle, bool) {
	return r.loaders.Handle(tag, identity)
}

// Clear disposes of a handle, exactly as handle.Clear() would — provided
// as a façade-level function so callers holding only a Runtime need not
// import internal/loader to tear a load down.
func (r *Runtime) Clear(h *loader.Handle) error {
	return h.Clear()
}
