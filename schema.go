package hyni

import (
	"embed"
	"errors"
	"io/fs"
	"os"
	"strings"
)

//go:embed schemas/*.json
var bundled embed.FS

// BundledSchemas holds the provider schemas shipped with the module,
// addressable as "schemas/<provider>.json".
var BundledSchemas fs.FS = bundled

// requiredSections are the top-level schema sections, in validation order.
var requiredSections = []string{
	"provider", "api", "request_template", "message_format", "response_format",
}

// Schema is a validated provider schema document. It is immutable; accessors
// return copies.
type Schema struct {
	tree     map[string]any
	location string
}

// Loader resolves schema locations against the filesystem first and a
// resource bundle second.
type Loader struct {
	// Resources is consulted when a location is not an existing file.
	// Nil means BundledSchemas.
	Resources fs.FS
}

// LoadSchema loads a schema from a file path or, failing that, from the
// bundled schemas.
func LoadSchema(location string) (*Schema, error) {
	return Loader{}.Load(location)
}

// Load reads, parses and validates the schema at location.
func (l Loader) Load(location string) (*Schema, error) {
	data, err := l.read(location)
	if err != nil {
		return nil, err
	}
	s, err := parseSchema(data, location)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (l Loader) read(location string) ([]byte, error) {
	if info, err := os.Stat(location); err == nil && !info.IsDir() {
		data, err := os.ReadFile(location)
		if err != nil {
			return nil, &SchemaError{Location: location, Msg: "failed to open schema file: " + location, Err: err}
		}
		return data, nil
	}

	res := l.Resources
	if res == nil {
		res = BundledSchemas
	}
	name := strings.TrimPrefix(location, "/")
	if fs.ValidPath(name) {
		data, err := fs.ReadFile(res, name)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, &SchemaError{Location: location, Msg: "failed to open schema file: " + location, Err: err}
		}
	}
	return nil, &SchemaError{Location: location, Msg: "failed to open schema file: " + location}
}

// ParseSchema parses and validates a schema document.
func ParseSchema(data []byte) (*Schema, error) {
	return parseSchema(data, "")
}

func parseSchema(data []byte, location string) (*Schema, error) {
	v, err := decodeTree(data)
	if err != nil {
		return nil, &SchemaError{Location: location, Msg: "failed to parse schema JSON", Err: err}
	}
	tree, ok := v.(map[string]any)
	if !ok {
		return nil, &SchemaError{Location: location, Msg: "failed to parse schema JSON: document is not an object"}
	}
	s := &Schema{tree: tree, location: location}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// NewSchema validates an already-decoded schema tree. The tree is copied and
// converted to the module's number representation.
func NewSchema(tree map[string]any) (*Schema, error) {
	if tree == nil {
		return nil, &SchemaError{Msg: "schema is nil"}
	}
	normalized, err := toTree(tree)
	if err != nil {
		return nil, &SchemaError{Msg: "failed to convert schema tree", Err: err}
	}
	s := &Schema{tree: normalized.(map[string]any)}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the structural requirements of the schema. Parameter
// constraints are not inspected here; they are interpreted when a parameter
// is set.
func (s *Schema) Validate() error {
	for _, field := range requiredSections {
		if !has(s.tree, field) {
			return s.missing(field, "missing required schema field: "+field)
		}
	}
	if !has(s.tree, "api", "endpoint") {
		return s.missing("api.endpoint", "missing API endpoint in schema")
	}
	if !has(s.tree, "message_format", "structure") {
		return s.missing("message_format.structure", "invalid message format in schema: missing structure")
	}
	if !has(s.tree, "message_format", "content_types") {
		return s.missing("message_format.content_types", "invalid message format in schema: missing content_types")
	}
	if !has(s.tree, "response_format", "success", "text_path") {
		return s.missing("response_format.success.text_path", "invalid response format in schema: missing success.text_path")
	}
	return nil
}

func (s *Schema) missing(field, msg string) error {
	return &SchemaError{Location: s.location, Field: field, Msg: msg}
}

// Location returns the path or resource name the schema was loaded from.
func (s *Schema) Location() string { return s.location }

// ProviderName returns provider.name.
func (s *Schema) ProviderName() string {
	v, _ := lookup(s.tree, "provider", "name")
	return textOrEmpty(v)
}

// Endpoint returns api.endpoint.
func (s *Schema) Endpoint() string {
	v, _ := lookup(s.tree, "api", "endpoint")
	return textOrEmpty(v)
}

// Tree returns a deep copy of the schema document.
func (s *Schema) Tree() map[string]any {
	return cloneTree(s.tree).(map[string]any)
}

// Get returns a deep copy of the value at the nested key path.
func (s *Schema) Get(keys ...string) (any, bool) {
	v, ok := lookup(s.tree, keys...)
	if !ok {
		return nil, false
	}
	return cloneTree(v), true
}

// raw returns the value without copying; callers must not mutate it.
func (s *Schema) raw(keys ...string) (any, bool) {
	return lookup(s.tree, keys...)
}

func (s *Schema) flag(keys ...string) bool {
	v, _ := lookup(s.tree, keys...)
	return asBool(v)
}

func textOrEmpty(v any) string {
	if v == nil {
		return ""
	}
	return asText(v)
}
