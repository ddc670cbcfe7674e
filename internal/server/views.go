package server

import (
	"time"

	"github.com/jbonatakis/mockingbird/internal/engine"
	"github.com/jbonatakis/mockingbird/internal/mockup"
)

type sessionView struct {
	State      string               `json:"state"`
	Mode       mockup.Mode          `json:"mode"`
	Draft      mockup.Draft         `json:"draft"`
	Output     mockup.RunOutput     `json:"output"`
	Errors     mockup.ChannelErrors `json:"errors"`
	Running    bool                 `json:"running"`
	RunID      uint64               `json:"runId"`
	Validation *validationView      `json:"validation,omitempty"`
	Channels   []mockup.Channel     `json:"channels"`
	History    []historyItemView    `json:"history"`
	Templates  []templateView       `json:"templates"`
}

type validationView struct {
	Message string         `json:"message"`
	Fields  []mockup.Field `json:"fields,omitempty"`
}

type historyItemView struct {
	ID        string      `json:"id"`
	CreatedAt time.Time   `json:"createdAt"`
	Mode      mockup.Mode `json:"mode"`
	Title     string      `json:"title"`
	Badge     string      `json:"badge"`
	Detail    string      `json:"detail"`
}

type templateView struct {
	mockup.Template
	Loading bool   `json:"loading"`
	Ready   bool   `json:"ready"`
	HTML    string `json:"html,omitempty"`
	Error   string `json:"error,omitempty"`
}

type eventView struct {
	RunID   uint64               `json:"runId"`
	Mode    mockup.Mode          `json:"mode"`
	Kind    string               `json:"kind"`
	Channel mockup.Channel       `json:"channel,omitempty"`
	Message string               `json:"message,omitempty"`
	Output  *mockup.RunOutput    `json:"output,omitempty"`
	Errors  mockup.ChannelErrors `json:"errors,omitempty"`
}

func newSessionView(snap engine.Snapshot) sessionView {
	v := sessionView{
		State:     snap.State.String(),
		Mode:      snap.Mode,
		Draft:     snap.Draft,
		Output:    snap.Output,
		Errors:    snap.Errors,
		Running:   snap.Running,
		RunID:     snap.RunID,
		Channels:  mockup.MustDescriptor(snap.Mode).Channels,
		History:   newHistoryItems(snap.History),
		Templates: make([]templateView, 0, len(snap.Templates)),
	}
	if snap.Validation != nil {
		v.Validation = &validationView{Message: snap.Validation.Message, Fields: snap.Validation.Fields}
	}
	for _, t := range snap.Templates {
		v.Templates = append(v.Templates, newTemplateView(t))
	}
	return v
}

func newHistoryItems(entries []mockup.HistoryEntry) []historyItemView {
	items := make([]historyItemView, 0, len(entries))
	for _, e := range entries {
		sum := e.Summary()
		items = append(items, historyItemView{
			ID:        e.ID,
			CreatedAt: e.CreatedAt,
			Mode:      e.Mode(),
			Title:     sum.Title,
			Badge:     sum.Badge,
			Detail:    sum.Detail,
		})
	}
	return items
}

func newTemplateView(t engine.TemplateStatus) templateView {
	return templateView{Template: t.Template, Loading: t.Loading, Ready: t.Ready(), HTML: t.HTML, Error: t.Error}
}

func newEventView(ev engine.Event) eventView {
	v := eventView{
		RunID:   ev.RunID,
		Mode:    ev.Mode,
		Kind:    ev.Kind.String(),
		Channel: ev.Channel,
		Message: ev.Message,
	}
	switch ev.Kind {
	case engine.EventChannelResolved:
		patch := ev.Patch
		v.Output = &patch
	case engine.EventSettled:
		out := ev.Output
		v.Output = &out
		v.Errors = ev.Errors
	}
	return v
}
