package voice

import "strings"

// Content is the tagged text content of one live turn. Transcripts arrive
// either as a single string or as a list of fragments; both shapes are
// carried here so extraction is a single total function.
type Content struct {
	Text  string
	Parts []string
}

// TextContent wraps a plain string transcript.
func TextContent(s string) Content {
	return Content{Text: s}
}

// PartsContent wraps a fragmented transcript.
func PartsContent(parts ...string) Content {
	return Content{Parts: parts}
}

// Plain flattens the content to a single trimmed string. It is total:
// every content shape yields a string, possibly empty.
func (c Content) Plain() string {
	fragments := make([]string, 0, 1+len(c.Parts))
	if strings.TrimSpace(c.Text) != "" {
		fragments = append(fragments, strings.TrimSpace(c.Text))
	}
	for _, p := range c.Parts {
		if strings.TrimSpace(p) != "" {
			fragments = append(fragments, strings.TrimSpace(p))
		}
	}
	return strings.Join(fragments, " ")
}

// LiveTurn is one role-tagged message in the live conversation context.
type LiveTurn struct {
	ID      string
	Role    string
	Content Content
}

// latestUserText returns the most recent user-authored utterance and its
// turn, scanning backward. ok is false when no user turn carries text.
func latestUserText(turns []LiveTurn) (text string, turn LiveTurn, ok bool) {
	for i := len(turns) - 1; i >= 0; i-- {
		if !strings.Contains(strings.ToLower(turns[i].Role), "user") {
			continue
		}
		if t := turns[i].Content.Plain(); t != "" {
			return t, turns[i], true
		}
	}
	return "", LiveTurn{}, false
}
