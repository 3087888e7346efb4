package hyni

import (
	"encoding/json"
	"strconv"
)

// BuildRequest assembles a provider-native request body from the current
// state. streaming asks for a streaming response; it only takes effect when
// the schema supports streaming and no explicit "stream" parameter is set.
//
// The result is a fresh tree with no null-valued fields at any depth. The
// context's templates and messages are not modified.
func (c *Context) BuildRequest(streaming bool) map[string]any {
	request := cloneObject(c.requestTemplate)

	messages := make([]any, 0, len(c.messages)+1)
	for _, m := range c.messages {
		messages = append(messages, cloneTree(m))
	}

	if c.model != "" {
		request["model"] = c.model
	}

	if c.hasSystem && c.SupportsSystemMessages() {
		if _, ok := c.validRoles[RoleSystem]; ok {
			sys := map[string]any{"role": RoleSystem, "content": c.system}
			messages = append([]any{sys}, messages...)
		} else {
			request["system"] = c.system
		}
	}

	request["messages"] = messages

	// Explicit parameters win over template values.
	for k, v := range c.parameters {
		request[k] = cloneTree(v)
	}

	if c.config.DefaultMaxTokens != nil && !present(request, "max_tokens") {
		request["max_tokens"] = jsonInt(*c.config.DefaultMaxTokens)
	}
	if c.config.DefaultTemperature != nil && !present(request, "temperature") {
		request["temperature"] = jsonFloat(*c.config.DefaultTemperature)
	}

	if _, explicit := c.parameters["stream"]; !explicit {
		request["stream"] = streaming && c.SupportsStreaming()
	}

	pruneNulls(request)
	return request
}

// present reports whether key is set to a non-null value. Template fields
// declared as null are treated as absent so defaults can fill them.
func present(obj map[string]any, key string) bool {
	v, ok := obj[key]
	return ok && v != nil
}

func jsonInt(n int) json.Number {
	return json.Number(strconv.Itoa(n))
}

func jsonFloat(f float64) json.Number {
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64))
}
