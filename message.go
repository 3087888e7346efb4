package hyni

import (
	"github.com/spetersoncode/hyni/media"
)

// Role names used by the convenience message helpers.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// AddUserMessage appends a text message from the user.
func (c *Context) AddUserMessage(text string) error {
	return c.AddMessage(RoleUser, text, "", "")
}

// AddUserMessageWithMedia appends a user message with an image attachment.
// data is base64, a data URI, or a path to a file to encode.
func (c *Context) AddUserMessageWithMedia(text, mediaType, data string) error {
	return c.AddMessage(RoleUser, text, mediaType, data)
}

// AddAssistantMessage appends a text message from the assistant.
func (c *Context) AddAssistantMessage(text string) error {
	return c.AddMessage(RoleAssistant, text, "", "")
}

// AddMessage appends a message with the given role. An image part is added
// when both mediaType and mediaData are non-empty.
func (c *Context) AddMessage(role, text, mediaType, mediaData string) error {
	msg, err := c.createMessage(role, text, mediaType, mediaData)
	if err != nil {
		return err
	}
	if c.config.EnableValidation {
		if err := c.validateMessage(msg); err != nil {
			return err
		}
	}
	c.messages = append(c.messages, msg)
	return nil
}

// Messages returns copies of the conversation messages in order.
func (c *Context) Messages() []map[string]any {
	out := make([]map[string]any, len(c.messages))
	for i, m := range c.messages {
		out[i] = cloneTree(m).(map[string]any)
	}
	return out
}

func (c *Context) createMessage(role, text, mediaType, mediaData string) (map[string]any, error) {
	msg := cloneObject(c.messageStructure)
	msg["role"] = role

	content := []any{c.textPart(text)}

	if mediaType != "" && mediaData != "" {
		if !c.SupportsMultimodal() && c.config.EnableValidation {
			return nil, &ValidationError{
				Field: "content",
				Msg:   "provider '" + c.providerName + "' does not support multimodal content",
			}
		}
		part, err := c.imagePart(mediaType, mediaData)
		if err != nil {
			return nil, err
		}
		content = append(content, part)
	}

	msg["content"] = content
	return msg, nil
}

func (c *Context) textPart(text string) map[string]any {
	part := cloneObject(c.textContent)
	part["text"] = text
	return part
}

func (c *Context) imagePart(mediaType, data string) (map[string]any, error) {
	if c.imageContent == nil {
		return nil, &ValidationError{
			Field: "content",
			Msg:   "schema for provider '" + c.providerName + "' declares no image content type",
		}
	}

	payload, err := resolveImageData(data)
	if err != nil {
		return nil, &ValidationError{Field: "content", Msg: "failed to process image", Err: err}
	}

	part := cloneObject(c.imageContent)
	if source, ok := part["source"].(map[string]any); ok {
		source["media_type"] = mediaType
		source["data"] = payload
	} else if imageURL, ok := part["image_url"].(map[string]any); ok {
		imageURL["url"] = media.DataURI(mediaType, payload)
	}
	return part, nil
}

// resolveImageData returns the raw base64 payload for data, which may be a
// data URI, base64 text, or a file path.
func resolveImageData(data string) (string, error) {
	if _, payload, ok := media.SplitDataURI(data); ok {
		return payload, nil
	}
	if media.IsBase64(data) {
		return data, nil
	}
	return media.EncodeFile(data)
}

func (c *Context) validateMessage(msg map[string]any) error {
	role, _ := msg["role"].(string)
	content, hasContent := msg["content"]
	if role == "" || !hasContent || content == nil {
		return &ValidationError{Field: "message", Msg: "message must contain 'role' and 'content' fields"}
	}
	if parts, ok := content.([]any); ok && len(parts) == 0 {
		return &ValidationError{Field: "message", Msg: "message must contain 'role' and 'content' fields"}
	}

	if len(c.validRoles) > 0 {
		if _, ok := c.validRoles[role]; !ok {
			allowed := make([]any, 0, len(c.validRoles))
			for _, r := range c.ValidRoles() {
				allowed = append(allowed, r)
			}
			return &ValidationError{Field: "role", Msg: "invalid message role: " + role, Allowed: allowed}
		}
	}
	return nil
}
