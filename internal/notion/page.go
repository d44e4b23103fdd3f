package notion

import "github.com/rickgao/registration-bot/internal/model"

// pageRequest is the body of POST /pages.
type pageRequest struct {
	Parent     parent              `json:"parent"`
	Properties map[string]property `json:"properties"`
}

type parent struct {
	DatabaseID string `json:"database_id"`
}

// property is a title or rich_text property value.
type property struct {
	Type     string     `json:"type"`
	Title    []richText `json:"title,omitempty"`
	RichText []richText `json:"rich_text,omitempty"`
}

type richText struct {
	Type string   `json:"type"`
	Text textBody `json:"text"`
}

type textBody struct {
	Content string `json:"content"`
}

func text(content string) []richText {
	return []richText{{Type: "text", Text: textBody{Content: content}}}
}

func titleProperty(content string) property {
	return property{Type: "title", Title: text(content)}
}

func richTextProperty(content string) property {
	return property{Type: "rich_text", RichText: text(content)}
}

func newMemberPage(databaseID string, m model.Member) pageRequest {
	return pageRequest{
		Parent: parent{DatabaseID: databaseID},
		Properties: map[string]property{
			PropNetID:      titleProperty(m.NetID),
			PropFirstName:  richTextProperty(m.FirstName),
			PropLastName:   richTextProperty(m.LastName),
			PropEmail:      richTextProperty(m.Email),
			PropNationalID: richTextProperty(m.NationalID),
			PropDiscordID:  richTextProperty(m.DiscordID),
		},
	}
}
