package notion

import (
	"encoding/json"
	"fmt"
	"strings"
)

// richText is one rich-text span inside a block or property.
type richText struct {
	PlainText string `json:"plain_text"`
}

// blockPayload is the type-specific body of a block.
type blockPayload struct {
	RichText []richText `json:"rich_text"`
}

// block is a Notion content block. Only the payload matching Type is set.
type block struct {
	Type             string        `json:"type"`
	Paragraph        *blockPayload `json:"paragraph,omitempty"`
	Heading1         *blockPayload `json:"heading_1,omitempty"`
	Heading2         *blockPayload `json:"heading_2,omitempty"`
	Heading3         *blockPayload `json:"heading_3,omitempty"`
	BulletedListItem *blockPayload `json:"bulleted_list_item,omitempty"`
	NumberedListItem *blockPayload `json:"numbered_list_item,omitempty"`
	Code             *blockPayload `json:"code,omitempty"`
}

// renderBlocks flattens blocks into markdown-ish plain text. Unsupported
// block types are skipped.
func renderBlocks(blocks []block) string {
	var parts []string

	for _, b := range blocks {
		var payload *blockPayload
		var prefix, suffix string

		switch b.Type {
		case "paragraph":
			payload = b.Paragraph
		case "heading_1":
			payload, prefix = b.Heading1, "# "
		case "heading_2":
			payload, prefix = b.Heading2, "## "
		case "heading_3":
			payload, prefix = b.Heading3, "### "
		case "bulleted_list_item":
			payload, prefix = b.BulletedListItem, "- "
		case "numbered_list_item":
			payload, prefix = b.NumberedListItem, "1. "
		case "code":
			payload, prefix, suffix = b.Code, "```\n", "\n```"
		default:
			continue
		}

		text := joinRichText(payload)
		if text == "" {
			continue
		}
		parts = append(parts, prefix+text+suffix)
	}

	return strings.Join(parts, "\n\n")
}

// joinRichText concatenates the plain text of a payload's spans.
func joinRichText(payload *blockPayload) string {
	if payload == nil || len(payload.RichText) == 0 {
		return ""
	}
	texts := make([]string, 0, len(payload.RichText))
	for _, rt := range payload.RichText {
		if rt.PlainText != "" {
			texts = append(texts, rt.PlainText)
		}
	}
	return strings.Join(texts, " ")
}

// titleProperty is a page property of type "title".
type titleProperty struct {
	Type  string     `json:"type"`
	Title []richText `json:"title"`
}

// titlePropertyNames are probed in order; Notion databases name the title
// column inconsistently.
var titlePropertyNames = []string{"title", "Name", "name", "Title"}

// extractTitle pulls the page title out of its properties, falling back to a
// placeholder derived from the page ID.
func extractTitle(pageID string, properties map[string]json.RawMessage) string {
	for _, name := range titlePropertyNames {
		raw, ok := properties[name]
		if !ok {
			continue
		}

		var prop titleProperty
		if err := json.Unmarshal(raw, &prop); err != nil {
			continue
		}
		if prop.Type != "title" || len(prop.Title) == 0 {
			continue
		}

		texts := make([]string, 0, len(prop.Title))
		for _, rt := range prop.Title {
			if rt.PlainText != "" {
				texts = append(texts, rt.PlainText)
			}
		}
		if title := strings.Join(texts, " "); title != "" {
			return title
		}
	}

	short := pageID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("Untitled Page (%s)", short)
}
