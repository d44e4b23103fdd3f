package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCommandsYAML = `commands:
  - name: register
    description: Register as a member
    options:
      - type: 3
        name: netid
        description: Your NetID
        required: true
      - type: 3
        name: first_name
        description: First name
        required: true
      - type: 3
        name: acm_id
        description: ACM national ID
  - name: ping
    description: Check the bot is alive
`

func writeCommandsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "commands.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadCommands(t *testing.T) {
	cmds, err := LoadCommands(writeCommandsFile(t, testCommandsYAML))
	require.NoError(t, err)
	require.Len(t, cmds, 2)

	reg := cmds[0]
	assert.Equal(t, "register", reg.Name)
	require.Len(t, reg.Options, 3)
	assert.True(t, reg.Options[0].Required)
	assert.False(t, reg.Options[2].Required)
	assert.Equal(t, 3, reg.Options[1].Type)
}

func TestLoadCommands_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty list", "commands: []\n"},
		{"missing name", "commands:\n  - description: nameless\n"},
		{"invalid yaml", "commands: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadCommands(writeCommandsFile(t, tt.content))
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadCommands(filepath.Join(t.TempDir(), "nope.yml"))
		assert.Error(t, err)
	})

	t.Run("no commands sentinel", func(t *testing.T) {
		_, err := LoadCommands(writeCommandsFile(t, "commands: []\n"))
		assert.ErrorIs(t, err, ErrNoCommands)
	})
}

func TestRegisterCommandsFile(t *testing.T) {
	var mu sync.Mutex
	var names []string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/applications/app-1/commands", r.URL.Path)
		assert.Equal(t, "Bot secret", r.Header.Get("Authorization"))

		var cmd map[string]any
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&cmd)) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		mu.Lock()
		names = append(names, cmd["name"].(string))
		mu.Unlock()

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(RegisteredCommand{ID: "c1", Name: cmd["name"].(string)})
	}))
	defer server.Close()

	c := NewClient(server.URL, "secret")
	require.NoError(t, c.RegisterCommandsFile(context.Background(), "app-1", writeCommandsFile(t, testCommandsYAML)))
	assert.Equal(t, []string{"register", "ping"}, names)
}

func TestRegisterCommands_StopsOnFailure(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message": "401: Unauthorized", "code": 0}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "bad", WithRetries(3, time.Millisecond))
	err := c.RegisterCommands(context.Background(), "app-1", []ApplicationCommand{
		{Name: "register", Description: "x"},
		{Name: "ping", Description: "y"},
	})
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, 1, calls)
}
