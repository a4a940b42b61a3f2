// Package assistant produces the informal markdown replies that the parser
// renders: farming topic explanations, community answers, chat turns and
// crop calendars.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Kind selects the prompt and model used for a request.
type Kind string

const (
	KindFarmingInfo  Kind = "farming_info"
	KindCommunityQA  Kind = "community_qa"
	KindChat         Kind = "chat"
	KindCropCalendar Kind = "crop_calendar"
)

// Kinds lists every supported kind.
var Kinds = []Kind{KindFarmingInfo, KindCommunityQA, KindChat, KindCropCalendar}

// ParseKind accepts a kind name or a short alias ("info", "qa", "calendar").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "farming_info", "info":
		return KindFarmingInfo, nil
	case "community_qa", "qa":
		return KindCommunityQA, nil
	case "chat":
		return KindChat, nil
	case "crop_calendar", "calendar":
		return KindCropCalendar, nil
	}
	return "", fmt.Errorf("unknown kind %q", s)
}

// Dialect names the parser dialect that matches how replies of this kind are
// formatted.
func (k Kind) Dialect() string {
	switch k {
	case KindFarmingInfo:
		return "info"
	case KindCommunityQA:
		return "qa"
	}
	return "full"
}

// JSONReply reports whether replies of this kind are JSON documents rather
// than marker text.
func (k Kind) JSONReply() bool { return k == KindCropCalendar }

// Turn is one earlier message in a chat.
type Turn struct {
	Role string `json:"role"` // "user" or "model"
	Text string `json:"text"`
}

// Prompt is a generation request. Which text fields are used depends on Kind.
type Prompt struct {
	Kind     Kind   `json:"kind"`
	Language string `json:"language,omitempty"` // language code, see Languages
	Topic    string `json:"topic,omitempty"`    // farming_info
	Question string `json:"question,omitempty"` // community_qa
	Message  string `json:"message,omitempty"`  // chat
	History  []Turn `json:"history,omitempty"`  // chat
	State    string `json:"state,omitempty"`    // crop_calendar
	Season   string `json:"season,omitempty"`   // crop_calendar
}

// MaxInputChars bounds every user supplied text field.
const MaxInputChars = 4000

// ErrEmptyInput is returned by Validate when a required field is blank.
var ErrEmptyInput = errors.New("empty input")

// Validate checks that the fields Kind needs are present and bounded.
func (p Prompt) Validate() error {
	type field struct{ name, value string }
	var fields []field
	switch p.Kind {
	case KindFarmingInfo:
		fields = []field{{"topic", p.Topic}}
	case KindCommunityQA:
		fields = []field{{"question", p.Question}}
	case KindChat:
		fields = []field{{"message", p.Message}}
		for i, t := range p.History {
			if t.Role != "user" && t.Role != "model" {
				return fmt.Errorf("history[%d]: invalid role %q", i, t.Role)
			}
		}
	case KindCropCalendar:
		fields = []field{{"state", p.State}, {"season", p.Season}}
	default:
		return fmt.Errorf("unknown kind %q", p.Kind)
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return fmt.Errorf("%s: %w", f.name, ErrEmptyInput)
		}
		if utf8.RuneCountInString(f.value) > MaxInputChars {
			return fmt.Errorf("%s: longer than %d characters", f.name, MaxInputChars)
		}
	}
	return nil
}

// Subject is a short label for the request, used in history and logs.
func (p Prompt) Subject() string {
	switch p.Kind {
	case KindFarmingInfo:
		return p.Topic
	case KindCommunityQA:
		return p.Question
	case KindChat:
		return p.Message
	case KindCropCalendar:
		return p.State + " / " + p.Season
	}
	return ""
}

// Generator produces reply text for a prompt.
type Generator interface {
	// Generate returns the complete reply.
	Generate(ctx context.Context, p Prompt) (string, error)
	// Stream calls onDelta with each chunk of the reply as it arrives.
	Stream(ctx context.Context, p Prompt, onDelta func(delta string)) error
}

// Languages maps supported language codes to the names used in prompts.
var Languages = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"bn": "Bengali",
	"te": "Telugu",
	"mr": "Marathi",
	"ta": "Tamil",
	"gu": "Gujarati",
	"kn": "Kannada",
	"ml": "Malayalam",
	"pa": "Punjabi",
	"or": "Odia",
}

// LanguageName resolves a language code. Unknown codes fall back to English.
func LanguageName(code string) string {
	if name, ok := Languages[strings.ToLower(strings.TrimSpace(code))]; ok {
		return name
	}
	return "English"
}
