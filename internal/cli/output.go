package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jbonatakis/mockingbird/internal/mockup"
	"github.com/jbonatakis/mockingbird/internal/preview"
)

func startProgressIndicator(w io.Writer, label string) func() {
	fmt.Fprintf(w, "%s ", label)
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				fmt.Fprint(w, ".")
			}
		}
	}()
	return func() {
		close(done)
		wg.Wait()
		fmt.Fprintln(w, " done")
	}
}

// printOutput writes each channel of a settled run. Channels that failed are
// listed under Errors; channels the mode never produces are skipped.
func printOutput(w io.Writer, out mockup.RunOutput, errs mockup.ChannelErrors, withHTML bool) {
	if out.EnhancedPrompt != nil {
		fmt.Fprintln(w, "Prompt:")
		fmt.Fprintf(w, "%s\n\n", out.PromptText())
	}
	if out.PreviewImage != nil && !out.PreviewImage.Empty() {
		fmt.Fprintf(w, "Image: %s (%d bytes)\n\n", out.PreviewImage.MIMEType, len(out.PreviewImage.Data))
	}
	if len(out.GroundingSources) > 0 {
		fmt.Fprintln(w, "Sources:")
		for _, src := range out.GroundingSources {
			fmt.Fprintf(w, "- %s <%s>\n", src.Title, src.URI)
		}
		fmt.Fprintln(w)
	}
	if len(errs) > 0 {
		channels := errs.Channels()
		sort.Slice(channels, func(i, j int) bool { return channels[i] < channels[j] })
		fmt.Fprintln(w, "Errors:")
		for _, ch := range channels {
			fmt.Fprintf(w, "- %s: %s\n", ch, errs[ch])
		}
		fmt.Fprintln(w)
	}
	if out.HTML != nil {
		if withHTML {
			fmt.Fprintln(w, "HTML:")
			fmt.Fprintln(w, out.HTMLText())
		} else {
			fmt.Fprintf(w, "HTML: %d bytes\n", len(out.HTMLText()))
		}
	}
}

// previewTitle is the page title for a run's preview: what its history
// entry would be called.
func previewTitle(input mockup.RunInput, out mockup.RunOutput) string {
	if input == nil {
		return "mockingbird"
	}
	return mockup.HistoryEntry{Input: input, Output: out}.Summary().Title
}

func writePreview(w io.Writer, dir, title string, out mockup.RunOutput) error {
	paths, err := preview.Write(dir, title, out)
	if err != nil {
		return fmt.Errorf("write preview: %w", err)
	}
	fmt.Fprintln(w)
	for _, p := range paths {
		fmt.Fprintf(w, "Wrote %s\n", p)
	}
	return nil
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}
