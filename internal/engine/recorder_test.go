package engine

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

func TestRecorderMasksForeignChannels(t *testing.T) {
	r := NewRecorder()
	out := mockup.RunOutput{
		EnhancedPrompt: mockup.StringPtr("leftover"),
		HTML:           mockup.StringPtr("<main/>"),
	}
	entry := r.Record(mockup.ModifyInput{BaseHTML: "<a/>", StyleHTML: "<b/>"}, out, nil)
	assert.Nil(t, entry.Output.EnhancedPrompt)
	assert.Equal(t, "<main/>", entry.Output.HTMLText())
	assert.Nil(t, entry.Errors)
	assert.Equal(t, mockup.ModeModify, entry.Mode())
}

func TestRecorderIDsAreTimeOrdered(t *testing.T) {
	r := NewRecorder()
	in := mockup.CloneInput{URL: "https://example.com"}
	a := r.Record(in, mockup.RunOutput{}, mockup.ChannelErrors{mockup.ChannelHTML: "x"})
	b := r.Record(in, mockup.RunOutput{}, nil)

	parsed, err := uuid.Parse(a.ID)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
	assert.Less(t, a.ID, b.ID)
	assert.Equal(t, "x", a.Errors[mockup.ChannelHTML])
	assert.WithinDuration(t, time.Now(), a.CreatedAt, time.Minute)
}

func TestRestoreResetsOtherModeFields(t *testing.T) {
	shot := mockup.NewImage(pngBytes)
	entry := mockup.HistoryEntry{
		ID:    "e",
		Input: mockup.CloneInput{Screenshots: []mockup.Image{shot}},
		Output: mockup.RunOutput{
			HTML:             mockup.StringPtr("<main/>"),
			GroundingSources: []mockup.GroundingSource{{Title: "t", URI: "https://t"}},
		},
	}
	got := Restore(entry)
	assert.Equal(t, mockup.ModeClone, got.Mode)
	assert.Equal(t, mockup.DefaultStyle, got.Draft.Style)
	assert.Empty(t, got.Draft.Text)
	assert.Empty(t, got.Draft.BaseHTML)
	require.Len(t, got.Draft.Screenshots, 1)
	assert.Equal(t, entry.Output, got.Output)

	in, err := got.Draft.Input(got.Mode)
	require.NoError(t, err)
	assert.Equal(t, entry.Input, in)
}
