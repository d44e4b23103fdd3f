package api

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInteraction_Unmarshal(t *testing.T) {
	data := `{
		"id": "1100",
		"application_id": "42",
		"type": 2,
		"token": "aW50ZXJhY3Rpb24",
		"guild_id": "77",
		"data": {
			"id": "900",
			"name": "register",
			"type": 1,
			"options": [
				{"name": "netid", "type": 3, "value": "abc123"},
				{"name": "first_name", "type": 3, "value": "  Ada "},
				{"name": "year", "type": 4, "value": 2024}
			]
		},
		"member": {"user": {"id": "555", "username": "ada"}}
	}`

	var i Interaction
	require.NoError(t, json.Unmarshal([]byte(data), &i))

	assert.Equal(t, InteractionApplicationCommand, i.Type)
	assert.Equal(t, "555", i.InvokerID())
	require.NotNil(t, i.Data)

	opt, ok := i.Data.Option("first_name")
	assert.True(t, ok)
	assert.Equal(t, "Ada", opt.String())
	opt, ok = i.Data.Option("year")
	assert.True(t, ok)
	assert.Equal(t, "2024", opt.String())
	_, ok = i.Data.Option("missing")
	assert.False(t, ok, "missing option reported present")
}

func TestInteraction_InvokerFromDM(t *testing.T) {
	i := Interaction{User: &User{ID: "9"}}
	assert.Equal(t, "9", i.InvokerID())
	assert.Empty(t, (&Interaction{}).InvokerID())
}

func TestEphemeralMessage(t *testing.T) {
	data, err := json.Marshal(EphemeralMessage("You have been registered!"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":4,"data":{"content":"You have been registered!","flags":64}}`, string(data))
}
