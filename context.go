package hyni

import (
	"sort"
	"strings"

	"github.com/spetersoncode/hyni/jsonpath"
)

// Context holds the state of one conversation with one provider and turns it
// into provider-native requests.
//
// A Context is not safe for concurrent use. Each goroutine must own its
// instance; see the factory package for task-confined contexts.
type Context struct {
	schema *Schema
	config Config

	providerName string
	endpoint     string
	headers      map[string]string
	model        string
	system       string
	hasSystem    bool
	messages     []map[string]any
	parameters   map[string]any
	apiKey       string
	validRoles   map[string]struct{}

	// Derived from the schema at construction. Templates are cloned before
	// every use and never mutated.
	textPath         []string
	errorPath        []string
	messageStructure map[string]any
	textContent      map[string]any
	imageContent     map[string]any
	requestTemplate  map[string]any
}

// New creates a context for schema. The schema is validated again here so a
// hand-built Schema value cannot bypass the structural checks.
func New(schema *Schema, cfg Config) (*Context, error) {
	if schema == nil {
		return nil, &SchemaError{Msg: "schema is nil"}
	}
	if err := schema.Validate(); err != nil {
		return nil, err
	}

	c := &Context{
		schema:     schema,
		config:     cfg,
		headers:    make(map[string]string),
		parameters: make(map[string]any),
		validRoles: make(map[string]struct{}),
	}
	if err := c.cacheSchemaElements(); err != nil {
		return nil, err
	}
	c.applyDefaults()
	c.buildHeaders()
	return c, nil
}

// NewFromFile loads the schema at location (file path, then bundled
// resource) and creates a context for it.
func NewFromFile(location string, cfg Config) (*Context, error) {
	schema, err := LoadSchema(location)
	if err != nil {
		return nil, err
	}
	return New(schema, cfg)
}

// NewFromJSON parses a schema document and creates a context for it.
func NewFromJSON(data []byte, cfg Config) (*Context, error) {
	schema, err := ParseSchema(data)
	if err != nil {
		return nil, err
	}
	return New(schema, cfg)
}

func (c *Context) cacheSchemaElements() error {
	s := c.schema
	c.providerName = s.ProviderName()
	c.endpoint = s.Endpoint()

	if roles, ok := s.raw("message_roles"); ok {
		for _, r := range stringList(roles) {
			c.validRoles[r] = struct{}{}
		}
	}

	tmpl, _ := s.raw("request_template")
	obj, ok := tmpl.(map[string]any)
	if !ok {
		return &SchemaError{Location: s.location, Field: "request_template", Msg: "request_template must be an object"}
	}
	c.requestTemplate = cloneTree(obj).(map[string]any)

	textPath, _ := s.raw("response_format", "success", "text_path")
	c.textPath = jsonpath.Parse(textPath)

	if errPath, ok := s.raw("response_format", "error", "error_path"); ok {
		c.errorPath = jsonpath.Parse(errPath)
	} else {
		c.errorPath = []string{}
	}

	structure, _ := s.raw("message_format", "structure")
	c.messageStructure = cloneObject(structure)

	if text, ok := s.raw("message_format", "content_types", "text"); ok {
		c.textContent = cloneObject(text)
	} else {
		c.textContent = map[string]any{"type": "text"}
	}
	if image, ok := s.raw("message_format", "content_types", "image"); ok {
		c.imageContent = cloneObject(image)
	}
	return nil
}

func (c *Context) applyDefaults() {
	if v, ok := c.schema.raw("models", "default"); ok {
		c.model = textOrEmpty(v)
	}
}

func (c *Context) buildHeaders() {
	c.headers = make(map[string]string)

	placeholder := ""
	if v, ok := c.schema.raw("authentication", "key_placeholder"); ok {
		placeholder = textOrEmpty(v)
	}

	if required, ok := c.schema.raw("headers", "required"); ok {
		if obj, ok := required.(map[string]any); ok {
			for k, v := range obj {
				value := asText(v)
				if placeholder != "" {
					value = strings.ReplaceAll(value, placeholder, c.apiKey)
				}
				c.headers[k] = value
			}
		}
	}

	if optional, ok := c.schema.raw("headers", "optional"); ok {
		if obj, ok := optional.(map[string]any); ok {
			for k, v := range obj {
				if s, ok := v.(string); ok && s != "" {
					c.headers[k] = s
				}
			}
		}
	}
}

// SetModel selects the model. When the schema lists available models and
// validation is enabled, other names are rejected.
func (c *Context) SetModel(model string) error {
	if available, ok := c.schema.raw("models", "available"); ok && c.config.EnableValidation {
		models := stringList(available)
		found := false
		for _, m := range models {
			if m == model {
				found = true
				break
			}
		}
		if !found {
			allowed := make([]any, len(models))
			for i, m := range models {
				allowed[i] = m
			}
			return &ValidationError{
				Field:   "model",
				Msg:     "model '" + model + "' is not supported by this provider",
				Allowed: allowed,
			}
		}
	}
	c.model = model
	return nil
}

// SetSystemMessage sets the system prompt.
func (c *Context) SetSystemMessage(text string) error {
	if !c.SupportsSystemMessages() && c.config.EnableValidation {
		return &ValidationError{
			Field: "system_message",
			Msg:   "provider '" + c.providerName + "' does not support system messages",
		}
	}
	c.system = text
	c.hasSystem = true
	return nil
}

// SetAPIKey stores the API key and rebuilds the headers.
func (c *Context) SetAPIKey(key string) error {
	if key == "" {
		return &ValidationError{Field: "api_key", Msg: "API key cannot be empty"}
	}
	c.apiKey = key
	c.buildHeaders()
	return nil
}

// HasAPIKey reports whether an API key has been set.
func (c *Context) HasAPIKey() bool { return c.apiKey != "" }

// Reset clears messages, the system message, parameters and the model, then
// reapplies the schema's default model. The API key and headers are kept.
func (c *Context) Reset() {
	c.ClearMessages()
	c.ClearSystemMessage()
	c.ClearParameters()
	c.model = ""
	c.applyDefaults()
}

// ClearMessages removes all conversation messages.
func (c *Context) ClearMessages() { c.messages = nil }

// ClearSystemMessage removes the system message.
func (c *Context) ClearSystemMessage() {
	c.system = ""
	c.hasSystem = false
}

// ClearParameters removes all parameters.
func (c *Context) ClearParameters() { c.parameters = make(map[string]any) }

// ProviderName returns the schema's provider.name.
func (c *Context) ProviderName() string { return c.providerName }

// Endpoint returns the schema's api.endpoint.
func (c *Context) Endpoint() string { return c.endpoint }

// Model returns the current model name, empty when unset.
func (c *Context) Model() string { return c.model }

// SystemMessage returns the system message and whether one is set.
func (c *Context) SystemMessage() (string, bool) { return c.system, c.hasSystem }

// Schema returns the schema the context was built from.
func (c *Context) Schema() *Schema { return c.schema }

// Config returns the context configuration.
func (c *Context) Config() Config { return c.config }

// Headers returns a copy of the HTTP headers for the provider API.
func (c *Context) Headers() map[string]string {
	out := make(map[string]string, len(c.headers))
	for k, v := range c.headers {
		out[k] = v
	}
	return out
}

// SupportedModels returns models.available, or an empty slice.
func (c *Context) SupportedModels() []string {
	v, ok := c.schema.raw("models", "available")
	if !ok {
		return []string{}
	}
	models := stringList(v)
	if models == nil {
		return []string{}
	}
	return models
}

// SupportsMultimodal reports multimodal.supported.
func (c *Context) SupportsMultimodal() bool { return c.schema.flag("multimodal", "supported") }

// SupportsStreaming reports features.streaming.
func (c *Context) SupportsStreaming() bool { return c.schema.flag("features", "streaming") }

// SupportsSystemMessages reports system_message.supported.
func (c *Context) SupportsSystemMessages() bool { return c.schema.flag("system_message", "supported") }

// ValidRoles returns the declared message roles, sorted.
func (c *Context) ValidRoles() []string {
	roles := make([]string, 0, len(c.validRoles))
	for r := range c.validRoles {
		roles = append(roles, r)
	}
	sort.Strings(roles)
	return roles
}

// IsValidRequest reports whether ValidationErrors is empty.
func (c *Context) IsValidRequest() bool {
	return len(c.ValidationErrors()) == 0
}

// ValidationErrors lists the reasons the current state would not produce a
// valid request. It is computed regardless of Config.EnableValidation.
func (c *Context) ValidationErrors() []string {
	var errs []string

	if c.model == "" {
		errs = append(errs, "Model name is required")
	}
	if len(c.messages) == 0 {
		errs = append(errs, "At least one message is required")
	}

	if v, ok := c.schema.raw("validation", "message_validation", "last_message_role"); ok && len(c.messages) > 0 {
		required := asText(v)
		last := c.messages[len(c.messages)-1]
		if role, _ := last["role"].(string); role != required {
			errs = append(errs, "Last message must be from: "+required)
		}
	}

	return errs
}
