package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMember() Member {
	return Member{
		NetID:     "abc123",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.edu",
		DiscordID: "555",
	}
}

func TestMember_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Member)
		wantErr string
	}{
		{"valid", func(m *Member) {}, ""},
		{"national id optional", func(m *Member) { m.NationalID = "" }, ""},
		{"missing netid", func(m *Member) { m.NetID = "" }, "netid"},
		{"blank first name", func(m *Member) { m.FirstName = "   " }, "first_name"},
		{"missing last name", func(m *Member) { m.LastName = "" }, "last_name"},
		{"missing email", func(m *Member) { m.Email = "" }, "email"},
		{"missing discord id", func(m *Member) { m.DiscordID = "" }, "discord_id"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMember()
			tt.mutate(&m)
			err := m.Validate()

			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, ErrMissingField)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestMember_LogAttrs(t *testing.T) {
	attrs := validMember().LogAttrs()
	assert.NotContains(t, attrs, "ada@example.edu", "email should not be logged")
	assert.Len(t, attrs, 4)
}
