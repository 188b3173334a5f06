package llm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testItem struct {
	Text    string  `json:"text"`
	Chapter FlexInt `json:"chapter"`
}

func (i testItem) Validate() error {
	if i.Text == "" {
		return errors.New("text is required")
	}
	return nil
}

func TestDecodeObject(t *testing.T) {
	item, err := DecodeObject[testItem]("```json\n{\"text\": \"hi\", \"chapter\": \"3\"}\n```")
	require.NoError(t, err)
	assert.Equal(t, "hi", item.Text)
	assert.Equal(t, FlexInt(3), item.Chapter)
}

func TestDecodeObject_FailsClosed(t *testing.T) {
	for name, raw := range map[string]string{
		"missing field":  `{"chapter": 1}`,
		"not json":       `nope`,
		"bad int":        `{"text": "a", "chapter": "three"}`,
		"array not obj":  `[{"text": "a"}]`,
		"truncated body": `{"text": "a", "chap`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeObject[testItem](raw)
			assert.ErrorIs(t, err, ErrMalformedResponse)
		})
	}
}

func TestDecodeList(t *testing.T) {
	t.Run("array", func(t *testing.T) {
		items, err := DecodeList[testItem](`[{"text": "a"}, {"text": "b", "chapter": 2.0}]`)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, FlexInt(2), items[1].Chapter)
	})

	t.Run("bare object is wrapped", func(t *testing.T) {
		items, err := DecodeList[testItem](`{"text": "only"}`)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "only", items[0].Text)
	})

	t.Run("object wrapping an array", func(t *testing.T) {
		items, err := DecodeList[testItem](`{"verses": [{"text": "a"}, {"text": "b"}]}`)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("truncated array keeps complete items", func(t *testing.T) {
		items, err := DecodeList[testItem](`[{"text": "a"}, {"text": "b"}, {"te`)
		require.NoError(t, err)
		assert.Len(t, items, 2)
	})

	t.Run("invalid element fails the batch", func(t *testing.T) {
		_, err := DecodeList[testItem](`[{"text": "a"}, {"chapter": 1}]`)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})

	t.Run("prose only", func(t *testing.T) {
		_, err := DecodeList[testItem](`no verses today`)
		assert.ErrorIs(t, err, ErrMalformedResponse)
	})
}
