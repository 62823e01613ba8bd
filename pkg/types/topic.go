// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Topic is the caller-supplied subject of a pipeline run. A Topic is always
// trimmed and non-empty; construct one with ParseTopic.
type Topic string

// String returns the topic text.
func (t Topic) String() string { return string(t) }

// InputError reports a missing or invalid request parameter. Callers are
// expected to recover locally, usually by substituting a default.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ParseTopic trims raw and returns it as a Topic. Empty or whitespace-only
// input yields an *InputError.
func ParseTopic(raw string) (Topic, error) {
	t := strings.TrimSpace(raw)
	if t == "" {
		return "", &InputError{Field: "topic", Reason: "empty after trimming"}
	}
	return Topic(t), nil
}

// TopicOrDefault parses raw and falls back to def when raw is empty.
// The fallback itself must be a valid topic.
func TopicOrDefault(raw, def string) (Topic, error) {
	t, err := ParseTopic(raw)
	if err == nil {
		return t, nil
	}
	return ParseTopic(def)
}
