package postservice

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/sushihentaime/inkwell/internal/common"
)

const (
	msgNameRequired  = "The post title is required."
	msgNameTooLong   = "must not be more than 255 characters long"
	msgContentFormat = "The content is in the wrong format (found: array)."
	msgBodyScript    = "must not contain script tags"
	msgBodyNUL       = "must not contain NUL characters"
)

// NewContentList builds a present content list from items.
func NewContentList(items ...ContentItem) ContentList {
	if items == nil {
		items = []ContentItem{}
	}
	return ContentList{Items: items, Present: true}
}

func (c *ContentList) UnmarshalJSON(b []byte) error {
	*c = ContentList{}

	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil
	}

	c.Present = true

	if len(b) == 0 || b[0] != '[' {
		c.Malformed = true
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		c.Malformed = true
		return nil
	}

	items := make([]ContentItem, 0, len(raw))
	for _, r := range raw {
		var item struct {
			ID   *int    `json:"id"`
			Body *string `json:"body"`
		}

		dec := json.NewDecoder(bytes.NewReader(r))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&item); err != nil || item.Body == nil {
			c.Malformed = true
			return nil
		}

		items = append(items, ContentItem{ID: item.ID, Body: *item.Body})
	}

	c.Items = items
	return nil
}

func (c ContentList) MarshalJSON() ([]byte, error) {
	if !c.Present {
		return []byte("null"), nil
	}
	if c.Items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.Items)
}

func validateName(v *common.Validator, name string) {
	v.Check(strings.TrimSpace(name) != "", "name", msgNameRequired)
	v.Check(v.MaxChars(name, 255), "name", msgNameTooLong)
}

// ValidateContent reports content that is not a list of {id?, body} objects.
func ValidateContent(v *common.Validator, content ContentList) {
	v.Check(!content.Malformed, "content", msgContentFormat)
	validateItems(v, content.Items)
}

func validateItems(v *common.Validator, items []ContentItem) {
	for _, item := range items {
		if item.ID != nil {
			v.Check(*item.ID > 0, "content", msgContentFormat)
		}
		v.Check(!strings.ContainsRune(item.Body, 0), "content", msgBodyNUL)
		v.Check(sanitizeMarkdown(item.Body) == item.Body, "content", msgBodyScript)
	}
}

func validateInt(v *common.Validator, num int, name string) {
	v.Check(num > 0, name, "must be greater than zero")
}
