package mockup

import "sort"

type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// CloneResult is what a clone call returns: markup and its citations, always together.
type CloneResult struct {
	HTML    string
	Sources []GroundingSource
}

// RunOutput holds the channels a run produced. A nil field means the channel
// has no result, which is different from a present empty string.
type RunOutput struct {
	EnhancedPrompt   *string           `json:"enhancedPrompt,omitempty"`
	PreviewImage     *Image            `json:"previewImage,omitempty"`
	HTML             *string           `json:"html,omitempty"`
	GroundingSources []GroundingSource `json:"groundingSources,omitempty"`
}

func (o RunOutput) Has(ch Channel) bool {
	switch ch {
	case ChannelPrompt:
		return o.EnhancedPrompt != nil
	case ChannelImage:
		return o.PreviewImage != nil
	case ChannelHTML:
		return o.HTML != nil
	default:
		return false
	}
}

func (o RunOutput) Empty() bool {
	return o.EnhancedPrompt == nil && o.PreviewImage == nil && o.HTML == nil && len(o.GroundingSources) == 0
}

// Merge returns o with every channel present in patch overwritten.
func (o RunOutput) Merge(patch RunOutput) RunOutput {
	if patch.EnhancedPrompt != nil {
		o.EnhancedPrompt = patch.EnhancedPrompt
	}
	if patch.PreviewImage != nil {
		o.PreviewImage = patch.PreviewImage
	}
	if patch.HTML != nil {
		o.HTML = patch.HTML
		o.GroundingSources = patch.GroundingSources
	}
	return o
}

// Only keeps the channels listed; grounding sources travel with html.
func (o RunOutput) Only(channels ...Channel) RunOutput {
	var out RunOutput
	for _, ch := range channels {
		switch ch {
		case ChannelPrompt:
			out.EnhancedPrompt = o.EnhancedPrompt
		case ChannelImage:
			out.PreviewImage = o.PreviewImage
		case ChannelHTML:
			out.HTML = o.HTML
			if len(o.GroundingSources) > 0 {
				out.GroundingSources = append([]GroundingSource(nil), o.GroundingSources...)
			}
		}
	}
	return out
}

func (o RunOutput) PromptText() string {
	if o.EnhancedPrompt == nil {
		return ""
	}
	return *o.EnhancedPrompt
}

func (o RunOutput) HTMLText() string {
	if o.HTML == nil {
		return ""
	}
	return *o.HTML
}

func StringPtr(s string) *string {
	return &s
}

// ChannelErrors maps a channel to the user-facing message of its failure.
type ChannelErrors map[Channel]string

func (e ChannelErrors) Get(ch Channel) (string, bool) {
	msg, ok := e[ch]
	return msg, ok
}

func (e ChannelErrors) Has(ch Channel) bool {
	_, ok := e[ch]
	return ok
}

func (e ChannelErrors) Clone() ChannelErrors {
	if len(e) == 0 {
		return ChannelErrors{}
	}
	out := make(ChannelErrors, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Channels returns the failed channels in stable order.
func (e ChannelErrors) Channels() []Channel {
	out := make([]Channel, 0, len(e))
	for ch := range e {
		out = append(out, ch)
	}
	sort.Slice(out, func(i, j int) bool { return channelRank(out[i]) < channelRank(out[j]) })
	return out
}

func channelRank(ch Channel) int {
	for i, known := range Channels {
		if known == ch {
			return i
		}
	}
	return len(Channels)
}
