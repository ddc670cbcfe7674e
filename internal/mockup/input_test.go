package mockup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDraftInputProjectsByMode(t *testing.T) {
	d := NewDraft()
	require.NoError(t, d.Set(FieldText, "dashboard"))
	require.NoError(t, d.Set(FieldStyle, "brutalist"))
	require.NoError(t, d.Set(FieldBaseHTML, "<a/>"))
	require.NoError(t, d.Set(FieldURL, "https://example.com"))

	in, err := d.Input(ModeDescription)
	require.NoError(t, err)
	assert.Equal(t, DescriptionInput{Text: "dashboard", Style: StyleBrutalist}, in)

	in, err = d.Input(ModeModify)
	require.NoError(t, err)
	assert.Equal(t, ModifyInput{BaseHTML: "<a/>"}, in)

	in, err = d.Input(ModeClone)
	require.NoError(t, err)
	assert.Equal(t, CloneInput{URL: "https://example.com"}, in)

	_, err = d.Input("nope")
	assert.Error(t, err)
}

func TestDraftSetRejects(t *testing.T) {
	d := NewDraft()
	assert.Error(t, d.Set(FieldStyle, "rococo"))
	assert.Equal(t, DefaultStyle, d.Style)
	assert.Error(t, d.Set(FieldScreenshots, "x"))
	assert.Error(t, d.Set("color", "red"))
}

func TestDraftFromInputResetsOtherModes(t *testing.T) {
	d := DraftFromInput(ModifyInput{BaseHTML: "<b/>", StyleHTML: "<i/>"})
	assert.Equal(t, "<b/>", d.BaseHTML)
	assert.Equal(t, "<i/>", d.StyleHTML)
	assert.Empty(t, d.Text)
	assert.Equal(t, DefaultStyle, d.Style)
	assert.Empty(t, d.URL)
	assert.Nil(t, d.Screenshots)

	shots := []Image{NewImage([]byte("GIF89a..."))}
	d = DraftFromInput(CloneInput{Screenshots: shots})
	require.Len(t, d.Screenshots, 1)
	shots[0] = Image{}
	assert.False(t, d.Screenshots[0].Empty(), "draft must not alias the input slice")
}
