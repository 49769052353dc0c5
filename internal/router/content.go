package router

import "encoding/json"

// MarshalJSON renders whichever variant is populated, keyed by Type — the
// Go-idiomatic analogue of the component-model content variant's
// text/image/embedded-resource tags.
func (c Content) MarshalJSON() ([]byte, error) {
	switch c.Type {
	case "image":
		return json.Marshal(struct {
			Type     string `json:"type"`
			Data     string `json:"data"`
			MimeType string `json:"mimeType"`
		}{Type: "image", Data: c.Image.Data, MimeType: c.Image.MimeType})
	case "resource":
		return json.Marshal(struct {
			Type     string           `json:"type"`
			Resource ResourceContents `json:"resource"`
		}{Type: "resource", Resource: c.Resource.Resource})
	default:
		return json.Marshal(struct {
			Type string `json:"type"`
			Text string `json:"text"`
		}{Type: "text", Text: c.Text})
	}
}

// UnmarshalJSON parses any of the three content variants, total over the
// tag: an unrecognized type is preserved as text rather than silently
// dropped.
func (c *Content) UnmarshalJSON(data []byte) error {
	var probe struct {
		Type     string           `json:"type"`
		Text     string           `json:"text"`
		Data     string           `json:"data"`
		MimeType string           `json:"mimeType"`
		Resource ResourceContents `json:"resource"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}
	switch probe.Type {
	case "image":
		c.Type = "image"
		c.Image = &ImageContent{Data: probe.Data, MimeType: probe.MimeType}
	case "resource":
		c.Type = "resource"
		c.Resource = &EmbeddedResource{Resource: probe.Resource}
	default:
		c.Type = "text"
		c.Text = probe.Text
	}
	return nil
}

// TextContent is a convenience constructor for the common plain-text case.
func TextContent(text string) Content {
	return Content{Type: "text", Text: text}
}
