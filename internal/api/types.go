package api

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ApplicationCommand is a slash command definition, as stored in the
// commands file and sent to POST /applications/{id}/commands.
type ApplicationCommand struct {
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description" json:"description"`
	Type        int             `yaml:"type,omitempty" json:"type,omitempty"`
	Options     []CommandOption `yaml:"options,omitempty" json:"options,omitempty"`
}

// CommandOption is one parameter of an application command.
type CommandOption struct {
	Type        int             `yaml:"type" json:"type"`
	Name        string          `yaml:"name" json:"name"`
	Description string          `yaml:"description" json:"description"`
	Required    bool            `yaml:"required,omitempty" json:"required,omitempty"`
	Choices     []CommandChoice `yaml:"choices,omitempty" json:"choices,omitempty"`
}

// CommandChoice is a predefined value for an option.
type CommandChoice struct {
	Name  string `yaml:"name" json:"name"`
	Value any    `yaml:"value" json:"value"`
}

// CommandsFile is the top-level layout of the commands file.
type CommandsFile struct {
	Commands []ApplicationCommand `yaml:"commands"`
}

// RegisteredCommand is the API's response to a command registration.
type RegisteredCommand struct {
	ID            string `json:"id"`
	ApplicationID string `json:"application_id"`
	Name          string `json:"name"`
	Version       string `json:"version"`
}

// InteractionType discriminates interaction payloads.
type InteractionType int

const (
	InteractionPing               InteractionType = 1
	InteractionApplicationCommand InteractionType = 2
	InteractionComponent          InteractionType = 3
	InteractionAutocomplete       InteractionType = 4
	InteractionModalSubmit        InteractionType = 5
)

// Interaction is the payload of an INTERACTION_CREATE dispatch.
type Interaction struct {
	ID            string           `json:"id"`
	ApplicationID string           `json:"application_id"`
	Type          InteractionType  `json:"type"`
	Token         string           `json:"token"`
	GuildID       string           `json:"guild_id,omitempty"`
	Data          *InteractionData `json:"data,omitempty"`
	Member        *GuildMember     `json:"member,omitempty"`
	User          *User            `json:"user,omitempty"`
}

// InvokerID returns the ID of the user who triggered the interaction,
// whether it came from a guild or a DM.
func (i *Interaction) InvokerID() string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

// InteractionData carries the invoked command and its options.
type InteractionData struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Type    int                 `json:"type"`
	Options []InteractionOption `json:"options,omitempty"`
}

// Option returns the option named name.
func (d *InteractionData) Option(name string) (InteractionOption, bool) {
	for _, o := range d.Options {
		if o.Name == name {
			return o, true
		}
	}
	return InteractionOption{}, false
}

// InteractionOption is one supplied option value.
type InteractionOption struct {
	Name  string          `json:"name"`
	Type  int             `json:"type"`
	Value json.RawMessage `json:"value"`
}

// String returns the option value as a string. Non-string scalars are
// rendered in their JSON form.
func (o InteractionOption) String() string {
	var s string
	if err := json.Unmarshal(o.Value, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var n json.Number
	if err := json.Unmarshal(o.Value, &n); err == nil {
		return n.String()
	}
	var b bool
	if err := json.Unmarshal(o.Value, &b); err == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

// GuildMember is the invoking member of a guild interaction.
type GuildMember struct {
	User *User  `json:"user,omitempty"`
	Nick string `json:"nick,omitempty"`
}

// User is a Discord user.
type User struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name,omitempty"`
}

// Interaction callback types.
const (
	CallbackPong                     = 1
	CallbackChannelMessageWithSource = 4
)

// MessageFlagEphemeral makes a reply visible only to the invoking user.
const MessageFlagEphemeral = 1 << 6

// InteractionResponse is the body of an interaction callback.
type InteractionResponse struct {
	Type int                      `json:"type"`
	Data *InteractionCallbackData `json:"data,omitempty"`
}

// InteractionCallbackData is the message sent back for an interaction.
type InteractionCallbackData struct {
	Content string `json:"content"`
	Flags   int    `json:"flags,omitempty"`
}

// EphemeralMessage builds a reply only the invoking user can see.
func EphemeralMessage(content string) InteractionResponse {
	return InteractionResponse{
		Type: CallbackChannelMessageWithSource,
		Data: &InteractionCallbackData{
			Content: content,
			Flags:   MessageFlagEphemeral,
		},
	}
}

// GatewayResponse from GET /gateway
type GatewayResponse struct {
	URL string `json:"url"`
}

// errorBody is the JSON error envelope returned by the API.
type errorBody struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
