package mockup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunOutputMergeKeepsSourcesWithHTML(t *testing.T) {
	out := RunOutput{
		HTML:             StringPtr("<old/>"),
		GroundingSources: []GroundingSource{{Title: "old"}},
	}
	out = out.Merge(RunOutput{EnhancedPrompt: StringPtr("p")})
	assert.Equal(t, "p", out.PromptText())
	assert.Len(t, out.GroundingSources, 1)

	out = out.Merge(RunOutput{HTML: StringPtr("<new/>")})
	assert.Equal(t, "<new/>", out.HTMLText())
	assert.Empty(t, out.GroundingSources)
}

func TestRunOutputOnlyDistinguishesAbsentFromEmpty(t *testing.T) {
	out := RunOutput{EnhancedPrompt: StringPtr(""), HTML: StringPtr("<x/>")}
	masked := out.Only(ChannelPrompt)
	assert.True(t, masked.Has(ChannelPrompt))
	assert.False(t, masked.Has(ChannelHTML))
	assert.False(t, masked.Empty())
	assert.True(t, RunOutput{}.Empty())
}

func TestChannelErrorsOrder(t *testing.T) {
	errs := ChannelErrors{ChannelHTML: "h", ChannelPrompt: "p"}
	assert.Equal(t, []Channel{ChannelPrompt, ChannelHTML}, errs.Channels())

	cp := errs.Clone()
	cp[ChannelImage] = "i"
	assert.False(t, errs.Has(ChannelImage))

	var nilErrs ChannelErrors
	require.NotNil(t, nilErrs.Clone())
}

func TestImageDataURI(t *testing.T) {
	img := NewImage([]byte("\x89PNG\r\n\x1a\nabc"))
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, "png", img.Ext())

	back, err := ParseDataURI(img.DataURI())
	require.NoError(t, err)
	assert.Equal(t, img, back)

	_, err = ParseDataURI("https://example.com/a.png")
	assert.Error(t, err)
	_, err = ParseDataURI("data:image/png,raw")
	assert.Error(t, err)
}
