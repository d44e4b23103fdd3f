package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrMissingField is returned by Validate for an empty required field.
var ErrMissingField = errors.New("missing required field")

// Member is one registration record.
type Member struct {
	NetID      string    // University NetID, the record's title
	FirstName  string    // Given name
	LastName   string    // Family name
	Email      string    // Contact email
	NationalID string    // ACM national membership ID, optional
	DiscordID  string    // Snowflake of the registering user
	CreatedAt  time.Time // When the registration was received
}

// Validate checks that every required field is present.
func (m Member) Validate() error {
	required := []struct {
		name  string
		value string
	}{
		{"netid", m.NetID},
		{"first_name", m.FirstName},
		{"last_name", m.LastName},
		{"email", m.Email},
		{"discord_id", m.DiscordID},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%w: %s", ErrMissingField, f.name)
		}
	}
	return nil
}

// LogAttrs returns identifying key/value pairs for logging, leaving out
// contact details.
func (m Member) LogAttrs() []any {
	return []any{"netid", m.NetID, "discord_id", m.DiscordID}
}
