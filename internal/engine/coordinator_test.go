package engine

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) add(ev Event) {
	l.mu.Lock()
	l.events = append(l.events, ev)
	l.mu.Unlock()
}

func (l *eventLog) kinds() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.events))
	for i, ev := range l.events {
		out[i] = ev.Kind.String() + ":" + string(ev.Channel)
	}
	return out
}

func newTestCoordinator(gen Generator) *Coordinator {
	return NewCoordinator(gen, WithCoordinatorLogger(quietLogger()))
}

func TestDescriptionRunResolvesAllChannels(t *testing.T) {
	gen := &fakeGenerator{}
	var log eventLog
	res, err := newTestCoordinator(gen).Run(context.Background(), 1,
		mockup.DescriptionInput{Text: "music dashboard", Style: mockup.StyleCyberpunk}, log.add)
	require.NoError(t, err)

	assert.Empty(t, res.Errors)
	assert.Equal(t, "## Overall Vibe\nmusic dashboard in Cyberpunk", res.Output.PromptText())
	require.NotNil(t, res.Output.PreviewImage)
	assert.Equal(t, "image/png", res.Output.PreviewImage.MIMEType)
	assert.Equal(t, "<div>generated</div>", res.Output.HTMLText())

	kinds := log.kinds()
	require.Len(t, kinds, 4)
	assert.Equal(t, "resolved:prompt", kinds[0], "the prompt resolves before anything else")
	assert.ElementsMatch(t, []string{"resolved:image", "resolved:html"}, kinds[1:3])
	assert.Equal(t, "settled:", kinds[3])
	assert.Equal(t, "enhance", gen.Calls()[0])
}

func TestDescriptionEnhanceFailureIsFailFast(t *testing.T) {
	gen := &fakeGenerator{
		enhance: func(context.Context, string, mockup.VisualStyle) (string, error) { return "", errQuota },
	}
	var log eventLog
	res, err := newTestCoordinator(gen).Run(context.Background(), 1,
		mockup.DescriptionInput{Text: "x", Style: mockup.StyleMinimalist}, log.add)
	require.NoError(t, err)

	assert.Equal(t, []string{"enhance"}, gen.Calls())
	assert.Equal(t, mockup.ChannelErrors{mockup.ChannelPrompt: "Failed to enhance prompt."}, res.Errors)
	assert.True(t, res.Output.Empty())
	assert.True(t, res.Failed())
	assert.Equal(t, []string{"failed:prompt", "settled:"}, log.kinds())

	log.mu.Lock()
	assert.ErrorIs(t, log.events[0].Err, errQuota)
	log.mu.Unlock()
}

func TestDescriptionBlankPromptCountsAsFailure(t *testing.T) {
	gen := &fakeGenerator{
		enhance: func(context.Context, string, mockup.VisualStyle) (string, error) { return "  \n", nil },
	}
	res, err := newTestCoordinator(gen).Run(context.Background(), 1,
		mockup.DescriptionInput{Text: "x", Style: mockup.StyleMinimalist}, nil)
	require.NoError(t, err)
	assert.True(t, res.Errors.Has(mockup.ChannelPrompt))
	assert.Nil(t, res.Output.EnhancedPrompt)
	assert.Equal(t, []string{"enhance"}, gen.Calls())
}

func TestDescriptionPartialFailureInEitherOrder(t *testing.T) {
	for _, imageFirst := range []bool{true, false} {
		name := "html first"
		if imageFirst {
			name = "image first"
		}
		t.Run(name, func(t *testing.T) {
			imgGate, htmlGate := newGate(), newGate()
			gen := &fakeGenerator{
				image: func(context.Context, string) (mockup.Image, error) {
					imgGate.wait()
					return mockup.Image{}, errQuota
				},
				html: func(context.Context, string) (string, error) {
					htmlGate.wait()
					return "<div>...</div>", nil
				},
			}

			var log eventLog
			done := make(chan Result, 1)
			go func() {
				res, err := newTestCoordinator(gen).Run(context.Background(), 7,
					mockup.DescriptionInput{Text: "music dashboard", Style: mockup.StyleCyberpunk}, log.add)
				assert.NoError(t, err)
				done <- res
			}()

			<-imgGate.entered
			<-htmlGate.entered
			first, second := htmlGate, imgGate
			if imageFirst {
				first, second = imgGate, htmlGate
			}
			first.open()
			require.Eventually(t, func() bool { return len(log.kinds()) == 2 }, timeout, tick)
			select {
			case <-done:
				t.Fatal("run settled before its last channel resolved")
			default:
			}
			second.open()
			res := <-done

			assert.Equal(t, "<div>...</div>", res.Output.HTMLText())
			assert.Nil(t, res.Output.PreviewImage)
			assert.NotNil(t, res.Output.EnhancedPrompt)
			assert.Equal(t, mockup.ChannelErrors{mockup.ChannelImage: "Failed to generate preview."}, res.Errors)
			assert.Equal(t, "settled:", log.kinds()[3])
		})
	}
}

func TestModifyRun(t *testing.T) {
	gen := &fakeGenerator{}
	res, err := newTestCoordinator(gen).Run(context.Background(), 1,
		mockup.ModifyInput{BaseHTML: "<a/>", StyleHTML: "<b/>"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "<div><a/></div>", res.Output.HTMLText())
	assert.Equal(t, []string{"restyle"}, gen.Calls())

	gen.restyle = func(context.Context, string, string) (string, error) { return "", errors.New("boom") }
	res, err = newTestCoordinator(gen).Run(context.Background(), 2,
		mockup.ModifyInput{BaseHTML: "<a/>", StyleHTML: "<b/>"}, nil)
	require.NoError(t, err)
	assert.Equal(t, mockup.ChannelErrors{mockup.ChannelHTML: "Failed to modify HTML."}, res.Errors)
	assert.Nil(t, res.Output.HTML)
}

func TestCloneRunSetsHTMLAndSourcesTogether(t *testing.T) {
	gen := &fakeGenerator{}
	var gotURL string
	gen.clone = func(_ context.Context, url string, _ []mockup.Image) (mockup.CloneResult, error) {
		gotURL = url
		return mockup.CloneResult{HTML: "<main/>", Sources: []mockup.GroundingSource{{Title: "a", URI: "https://a"}}}, nil
	}
	res, err := newTestCoordinator(gen).Run(context.Background(), 1, mockup.CloneInput{URL: " https://a.example "}, nil)
	require.NoError(t, err)
	assert.Equal(t, "https://a.example", gotURL)
	assert.Equal(t, "<main/>", res.Output.HTMLText())
	assert.Len(t, res.Output.GroundingSources, 1)

	gen.clone = func(context.Context, string, []mockup.Image) (mockup.CloneResult, error) {
		return mockup.CloneResult{Sources: []mockup.GroundingSource{{Title: "stray"}}}, errors.New("blocked")
	}
	res, err = newTestCoordinator(gen).Run(context.Background(), 2, mockup.CloneInput{URL: "https://a.example"}, nil)
	require.NoError(t, err)
	assert.Nil(t, res.Output.HTML)
	assert.Empty(t, res.Output.GroundingSources)
	assert.Equal(t, "Failed to clone the page.", res.Errors[mockup.ChannelHTML])
}

func TestRunRejectsInvalidInputWithoutCalls(t *testing.T) {
	gen := &fakeGenerator{}
	c := newTestCoordinator(gen)
	for _, in := range []mockup.RunInput{
		mockup.DescriptionInput{Style: mockup.StyleMinimalist},
		mockup.ModifyInput{BaseHTML: "<a/>"},
		mockup.CloneInput{},
	} {
		_, err := c.Run(context.Background(), 1, in, func(Event) { t.Fatal("no events expected") })
		var verr *mockup.ValidationError
		assert.True(t, errors.As(err, &verr), "%T: %v", in, err)
	}
	assert.Empty(t, gen.Calls())

	_, err := c.Stream(context.Background(), 1, mockup.CloneInput{})
	assert.Error(t, err)
}

func TestStreamClosesAfterSettled(t *testing.T) {
	events, err := newTestCoordinator(&fakeGenerator{}).Stream(context.Background(), 3,
		mockup.DescriptionInput{Text: "x", Style: mockup.StyleBrutalist})
	require.NoError(t, err)

	var kinds []EventKind
	for ev := range events {
		assert.Equal(t, uint64(3), ev.RunID)
		kinds = append(kinds, ev.Kind)
	}
	require.Len(t, kinds, 4)
	assert.Equal(t, EventSettled, kinds[3])
}

func TestFailureMessage(t *testing.T) {
	assert.Equal(t, "Failed to generate HTML from prompt.", FailureMessage(mockup.ModeDescription, mockup.ChannelHTML))
	assert.Equal(t, "Failed to clone the page.", FailureMessage(mockup.ModeClone, mockup.ChannelHTML))
	assert.Equal(t, "Failed to generate preview.", FailureMessage(mockup.ModeDescription, mockup.ChannelImage))
}
