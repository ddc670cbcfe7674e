package mockup

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDescription(t *testing.T) {
	err := Validate(DescriptionInput{Text: "   ", Style: StyleMinimalist})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, ModeDescription, verr.Mode)
	assert.Equal(t, []Field{FieldText}, verr.Fields)
	assert.Equal(t, "Please describe your UI idea.", verr.Message)

	err = Validate(DescriptionInput{Text: "a login form", Style: "Baroque"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []Field{FieldStyle}, verr.Fields)

	assert.NoError(t, Validate(DescriptionInput{Text: "a login form", Style: StyleCyberpunk}))
}

func TestValidateModifyReportsEveryMissingField(t *testing.T) {
	err := Validate(ModifyInput{BaseHTML: "", StyleHTML: "\n"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []Field{FieldBaseHTML, FieldStyleHTML}, verr.Fields)
	assert.Contains(t, verr.Error(), "baseHtml, styleHtml")

	err = Validate(ModifyInput{BaseHTML: "<div></div>"})
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []Field{FieldStyleHTML}, verr.Fields)

	assert.NoError(t, Validate(ModifyInput{BaseHTML: "<div></div>", StyleHTML: "<p></p>"}))
}

func TestValidateClone(t *testing.T) {
	shot := NewImage([]byte("\x89PNG\r\n\x1a\nrest"))

	cases := []struct {
		name  string
		input CloneInput
		field Field
		ok    bool
	}{
		{name: "neither", input: CloneInput{}, field: FieldURL},
		{name: "url only", input: CloneInput{URL: "https://example.com"}, ok: true},
		{name: "screenshot only", input: CloneInput{Screenshots: []Image{shot}}, ok: true},
		{name: "both", input: CloneInput{URL: "http://example.com/x", Screenshots: []Image{shot}}, ok: true},
		{name: "bad scheme", input: CloneInput{URL: "ftp://example.com"}, field: FieldURL},
		{name: "no host", input: CloneInput{URL: "https://"}, field: FieldURL},
		{name: "bare host", input: CloneInput{URL: "example.com"}, ok: true},
		{name: "bare host with path", input: CloneInput{URL: " example.com/pricing "}, ok: true},
		{name: "bare host with port", input: CloneInput{URL: "localhost:8080"}, ok: true},
		{name: "too many", input: CloneInput{Screenshots: []Image{shot, shot, shot, shot}}, field: FieldScreenshots},
		{name: "empty shot", input: CloneInput{Screenshots: []Image{{MIMEType: "image/png"}}}, field: FieldScreenshots},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.input)
			if tc.ok {
				assert.NoError(t, err)
				return
			}
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Contains(t, verr.Fields, tc.field)
		})
	}
}

func TestNormalizeURL(t *testing.T) {
	cases := map[string]string{
		"":                     "",
		"example.com":          "https://example.com",
		"  example.com/a?b=1 ": "https://example.com/a?b=1",
		"//example.com":        "https://example.com",
		"localhost:8080":       "https://localhost:8080",
		"http://example.com":   "http://example.com",
		"ftp://example.com":    "ftp://example.com",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeURL(in), "input %q", in)
	}

	d := NewDraft()
	d.URL = "example.com"
	input, err := d.Input(ModeClone)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", input.(CloneInput).URL)
}

func TestDescriptorChannels(t *testing.T) {
	assert.Equal(t, []Channel{ChannelPrompt, ChannelImage, ChannelHTML}, MustDescriptor(ModeDescription).Channels)
	assert.True(t, MustDescriptor(ModeModify).Applies(ChannelHTML))
	assert.False(t, MustDescriptor(ModeModify).Applies(ChannelImage))
	assert.False(t, MustDescriptor(ModeClone).Applies(ChannelPrompt))

	_, ok := DescriptorFor("bogus")
	assert.False(t, ok)
	assert.Panics(t, func() { MustDescriptor("bogus") })
}

func TestParseStyleAndMode(t *testing.T) {
	style, err := ParseStyle("clean")
	require.NoError(t, err)
	assert.Equal(t, StyleCorporate, style)

	style, err = ParseStyle("vintage & retro")
	require.NoError(t, err)
	assert.Equal(t, StyleVintage, style)

	_, err = ParseStyle("")
	assert.Error(t, err)

	mode, err := ParseMode("Remix")
	require.NoError(t, err)
	assert.Equal(t, ModeModify, mode)

	_, err = ParseMode("edit")
	assert.Error(t, err)
}
