package engine

import (
	"context"
	"fmt"

	"github.com/jbonatakis/mockingbird/internal/mockup"
)

type templateState struct {
	loading bool
	html    string
	err     string
}

// TemplateStatus is a catalog template with its cached render.
type TemplateStatus struct {
	mockup.Template
	Loading bool
	HTML    string
	Error   string
}

func (t TemplateStatus) Ready() bool { return t.HTML != "" }

func (s *Session) templateStatusesLocked() []TemplateStatus {
	catalog := mockup.Templates()
	out := make([]TemplateStatus, 0, len(catalog))
	for _, tpl := range catalog {
		st := TemplateStatus{Template: tpl}
		if cached, ok := s.templates[tpl.ID]; ok {
			st.Loading = cached.loading
			st.HTML = cached.html
			st.Error = cached.err
		}
		out = append(out, st)
	}
	return out
}

// GenerateTemplate renders a catalog template to HTML and caches it. Calls
// for a template that is already rendering share the in-flight request.
// Run state is never touched.
func (s *Session) GenerateTemplate(ctx context.Context, id string) (string, error) {
	tpl, ok := mockup.TemplateByID(id)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}

	s.mu.Lock()
	st := s.templates[id]
	if st == nil {
		st = &templateState{}
		s.templates[id] = st
	}
	st.loading = true
	st.err = ""
	s.mu.Unlock()
	s.notify()

	v, err, _ := s.templateCalls.Do(id, func() (any, error) {
		html, err := s.coord.gen.GenerateHTML(ctx, tpl.Directive())
		if err == nil && html == "" {
			err = fmt.Errorf("empty html")
		}
		return html, err
	})

	s.mu.Lock()
	st.loading = false
	if err != nil {
		st.err = msgTemplate
	} else {
		st.html = v.(string)
	}
	s.mu.Unlock()
	s.notify()

	if err != nil {
		s.logger.Warn("template generation failed", "template", id, "error", err)
		return "", fmt.Errorf("generate template %s: %w", id, err)
	}
	return v.(string), nil
}

// UseTemplate switches to modify mode with a rendered template placed in the
// base or style input.
func (s *Session) UseTemplate(id string, target mockup.TemplateTarget) error {
	if _, ok := mockup.TemplateByID(id); !ok {
		return fmt.Errorf("%w: %s", ErrTemplateNotFound, id)
	}
	s.mu.Lock()
	if s.activeRun != 0 {
		s.mu.Unlock()
		return ErrRunInProgress
	}
	st := s.templates[id]
	if st == nil || st.html == "" {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrTemplateNotReady, id)
	}
	switch target {
	case mockup.TargetBase:
		s.draft.BaseHTML = st.html
	case mockup.TargetStyle:
		s.draft.StyleHTML = st.html
	default:
		s.mu.Unlock()
		return fmt.Errorf("unknown template target %q", target)
	}
	if s.mode != mockup.ModeModify {
		s.setModeLocked(mockup.ModeModify)
	}
	s.mu.Unlock()
	s.notify()
	return nil
}
