package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepair_IdempotentOnCleanJSON(t *testing.T) {
	values := []any{
		map[string]any{"text": "Jesus wept.", "reference": "John 11:35", "chapter": 11},
		[]any{map[string]any{"a": 1}, map[string]any{"b": "two"}},
		map[string]any{"nested": map[string]any{"list": []int{1, 2, 3}}},
	}
	for _, v := range values {
		b, err := json.Marshal(v)
		require.NoError(t, err)
		assert.Equal(t, string(b), Repair(string(b)))
		assert.Equal(t, string(b), Repair(Repair(string(b))))
	}
}

func TestRepair(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "json fence",
			in:   "```json\n{\"text\": \"Be still\"}\n```",
			want: `{"text": "Be still"}`,
		},
		{
			name: "bare fence",
			in:   "```\n[1, 2]\n```",
			want: `[1, 2]`,
		},
		{
			name: "single line fence",
			in:   "```json {\"a\": 1}```",
			want: `{"a": 1}`,
		},
		{
			name: "prose around object",
			in:   "Sure! Here is your verse:\n{\"text\": \"I can do all things\"}\nMay it bless you.",
			want: `{"text": "I can do all things"}`,
		},
		{
			name: "prose around fenced object",
			in:   "Here you go:\n```json\n{\"a\": \"}\"}\n```\nEnjoy",
			want: `{"a": "}"}`,
		},
		{
			name: "bare translation and reference",
			in:   "{\"text\": \"The LORD is my shepherd\", \"reference\": Psalm 23:1, \"translation\": KJV}",
			want: `{"text": "The LORD is my shepherd", "reference": "Psalm 23:1", "translation": "KJV"}`,
		},
		{
			name: "bare book before newline",
			in:   "{\n\"book\": Romans\n}",
			want: "{\n\"book\": \"Romans\"\n}",
		},
		{
			name: "json literals stay unquoted",
			in:   `{"text": "Jesus wept.", "reference": John 11:35, "translation": null, "book": false}`,
			want: `{"text": "Jesus wept.", "reference": "John 11:35", "translation": null, "book": false}`,
		},
		{
			name: "truncated array salvages complete objects",
			in:   `[{"text": "a", "reference": "John 1:1"}, {"text": "b", "reference": "John 1:2"}, {"text": "c", "refer`,
			want: `[{"text": "a", "reference": "John 1:1"},{"text": "b", "reference": "John 1:2"}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Repair(tt.in)
			assert.Equal(t, tt.want, got)
			assert.True(t, json.Valid([]byte(got)), "repaired output should parse: %s", got)
		})
	}
}

func TestRepair_FenceYieldsParseableJSON(t *testing.T) {
	inner := `{"title": "Strength", "text": "I am strong in the Lord", "style": "declaration"}`
	for _, wrapped := range []string{
		"```json\n" + inner + "\n```",
		"```JSON\n" + inner + "\n```",
		"```\n" + inner + "\n```",
		"  ```json\n" + inner + "\n```  ",
	} {
		var v map[string]string
		require.NoError(t, json.Unmarshal([]byte(Repair(wrapped)), &v), wrapped)
		assert.Equal(t, "Strength", v["title"])
	}
}

func TestRepair_UnrecoverableStaysInvalid(t *testing.T) {
	got := Repair("I'm sorry, I can't help with that.")
	assert.False(t, json.Valid([]byte(got)))
}

func TestFirstBalancedSpan(t *testing.T) {
	span, ok := firstBalancedSpan(`noise [{"a": "]"}, {"b": 2}] trailing {"c": 3}`)
	assert.True(t, ok)
	assert.Equal(t, `[{"a": "]"}, {"b": 2}]`, span)

	_, ok = firstBalancedSpan(`{"a": [1, 2}`)
	assert.False(t, ok)
}
