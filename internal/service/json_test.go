package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
		wantErr  bool
	}{
		{name: "plain object", response: `{"a":1}`, want: `{"a":1}`},
		{name: "markdown fence", response: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{name: "prose around", response: `Here you go: {"a":{"b":[1,2]}} hope it helps`, want: `{"a":{"b":[1,2]}}`},
		{name: "braces inside strings", response: `{"text":"use { and } freely","n":"\"}"}`, want: `{"text":"use { and } freely","n":"\"}"}`},
		{name: "think block", response: "<think>maybe {x}</think>\n{\"ok\":true}", want: `{"ok":true}`},
		{name: "array", response: `result: [{"a":1},{"a":2}]`, want: `[{"a":1},{"a":2}]`},
		{name: "object after invalid array", response: `[not json] {"a":1}`, want: `{"a":1}`},
		{name: "invalid fragment before object", response: `use {brackets} then {"a":1}`, want: `{"a":1}`},
		{name: "invalid object before array", response: `{x} [1,2]`, want: `[1,2]`},
		{name: "no json", response: "I cannot help with that", wantErr: true},
		{name: "unterminated", response: `{"a":1`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.response)
			if tt.wantErr {
				assert.ErrorIs(t, err, errNoJSON)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseJSON(t *testing.T) {
	type reply struct {
		Name string `json:"name"`
	}

	got, err := parseJSON[reply]("```json\n{\"name\":\"rice\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "rice", got.Name)

	_, err = parseJSON[reply](`{"name": 5}`)
	assert.Error(t, err)
}
