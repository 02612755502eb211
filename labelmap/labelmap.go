// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package labelmap

import (
	"fmt"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// Entry maps a class name to a numeric class id.
type Entry struct {
	Name        string `hcl:"name"`
	ID          int64  `hcl:"id"`
	DisplayName string `hcl:"display_name,optional"`
}

// hclLabelMapFile represents the top-level structure of a label map file for
// decoding.
type hclLabelMapFile struct {
	Items []*Entry `hcl:"item,block"`
}

// Map is a validated class label map with lookup by name or display name.
type Map struct {
	entries   []*Entry
	byName    map[string]*Entry
	byDisplay map[string]*Entry
}

// New builds a Map from entries, validating ids and name uniqueness.
func New(entries []*Entry) (*Map, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyLabelMap
	}

	m := &Map{
		entries:   entries,
		byName:    make(map[string]*Entry, len(entries)),
		byDisplay: make(map[string]*Entry, len(entries)),
	}
	seenIDs := make(map[int64]string, len(entries))

	for _, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("%w: item with id %d", ErrEmptyName, entry.ID)
		}
		if entry.ID <= 0 {
			return nil, fmt.Errorf("%w: item %q has id %d", ErrInvalidID, entry.Name, entry.ID)
		}
		if prev, ok := m.byName[entry.Name]; ok {
			return nil, fmt.Errorf("%w: %q used by ids %d and %d",
				ErrDuplicateName, entry.Name, prev.ID, entry.ID)
		}
		if prev, ok := seenIDs[entry.ID]; ok {
			return nil, fmt.Errorf("%w: %d used by %q and %q",
				ErrDuplicateID, entry.ID, prev, entry.Name)
		}
		m.byName[entry.Name] = entry
		seenIDs[entry.ID] = entry.Name
		if entry.DisplayName != "" {
			if prev, ok := m.byDisplay[entry.DisplayName]; ok {
				return nil, fmt.Errorf("%w: display name %q used by ids %d and %d",
					ErrDuplicateName, entry.DisplayName, prev.ID, entry.ID)
			}
			m.byDisplay[entry.DisplayName] = entry
		}
	}

	return m, nil
}

// Load parses and validates a label map file at path.
func Load(path string) (*Map, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse label map %s: %w", path, diags)
	}

	var parsed hclLabelMapFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode label map %s: %w", path, diags)
	}

	return New(parsed.Items)
}

// Parse parses and validates label map source. The filename is used only in
// diagnostics.
func Parse(src []byte, filename string) (*Map, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse label map %s: %w", filename, diags)
	}

	var parsed hclLabelMapFile
	diags = gohcl.DecodeBody(file.Body, nil, &parsed)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode label map %s: %w", filename, diags)
	}

	return New(parsed.Items)
}

// Lookup returns the class id for a class name.
func (m *Map) Lookup(name string) (int64, bool) {
	entry, ok := m.byName[name]
	if !ok {
		return 0, false
	}
	return entry.ID, true
}

// LookupDisplay returns the class id for a display name, falling back to the
// canonical name when the display name is unknown.
func (m *Map) LookupDisplay(name string) (int64, bool) {
	if entry, ok := m.byDisplay[name]; ok {
		return entry.ID, true
	}
	return m.Lookup(name)
}

// Entries returns the label map entries in file order.
func (m *Map) Entries() []*Entry {
	return m.entries
}

// Len returns the number of classes in the map.
func (m *Map) Len() int {
	return len(m.entries)
}

// MaxID returns the largest class id in the map.
func (m *Map) MaxID() int64 {
	var max int64
	for _, entry := range m.entries {
		if entry.ID > max {
			max = entry.ID
		}
	}
	return max
}
