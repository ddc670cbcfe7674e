package generate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	cases := map[string]string{
		"```html\n<div>x</div>\n```":   "<div>x</div>",
		"  ```\n<p/>\n```  ":            "<p/>",
		"<div>plain</div>":             "<div>plain</div>",
		"```<b>inline</b>```":          "<b>inline</b>",
		"```html\n<a/>\n```\n```\n<b/>\n```": "```html\n<a/>\n```\n```\n<b/>\n```",
		"```HTML\n<section>\n</section>\n```": "<section>\n</section>",
	}
	for in, want := range cases {
		assert.Equal(t, want, StripCodeFence(in), "input %q", in)
	}
}

func TestExtractJSON(t *testing.T) {
	got, err := ExtractJSON("working...\n{\"html\":\"<a/>\"}\ndone")
	require.NoError(t, err)
	assert.Equal(t, `{"html":"<a/>"}`, got)

	got, err = ExtractJSON("here:\n```json\n{\"text\": \"brace } inside\"}\n```\n")
	require.NoError(t, err)
	assert.Equal(t, `{"text": "brace } inside"}`, got)

	_, err = ExtractJSON("nothing here")
	assert.True(t, errors.Is(err, ErrNoJSONFound))

	_, err = ExtractJSON(`{"a":1} {"b":2}`)
	assert.True(t, errors.Is(err, ErrMultipleJSONFound))
}
