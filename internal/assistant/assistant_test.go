package assistant

import (
	"errors"
	"strings"
	"testing"
)

func TestParseKind(t *testing.T) {
	tests := map[string]Kind{
		"farming_info":  KindFarmingInfo,
		"info":          KindFarmingInfo,
		" QA ":          KindCommunityQA,
		"community_qa":  KindCommunityQA,
		"chat":          KindChat,
		"calendar":      KindCropCalendar,
		"crop_calendar": KindCropCalendar,
	}
	for in, want := range tests {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q): expected %q, got %q (err %v)", in, want, got, err)
		}
	}
	if _, err := ParseKind("analysis"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

func TestKindDialect(t *testing.T) {
	want := map[Kind]string{
		KindFarmingInfo:  "info",
		KindCommunityQA:  "qa",
		KindChat:         "full",
		KindCropCalendar: "full",
	}
	for _, k := range Kinds {
		if got := k.Dialect(); got != want[k] {
			t.Errorf("%s: expected dialect %q, got %q", k, want[k], got)
		}
	}
	if !KindCropCalendar.JSONReply() || KindChat.JSONReply() {
		t.Error("only crop calendars reply in JSON")
	}
}

func TestPromptValidate(t *testing.T) {
	tests := []struct {
		name    string
		p       Prompt
		wantErr string
	}{
		{"info ok", Prompt{Kind: KindFarmingInfo, Topic: "Drip irrigation"}, ""},
		{"info blank", Prompt{Kind: KindFarmingInfo, Topic: "   "}, "topic: empty input"},
		{"qa ok", Prompt{Kind: KindCommunityQA, Question: "Why are my leaves yellow?"}, ""},
		{"calendar missing season", Prompt{Kind: KindCropCalendar, State: "Punjab"}, "season: empty input"},
		{"calendar missing both", Prompt{Kind: KindCropCalendar}, "state: empty input"},
		{"chat ok", Prompt{Kind: KindChat, Message: "hi", History: []Turn{{Role: "user", Text: "a"}, {Role: "model", Text: "b"}}}, ""},
		{"chat bad role", Prompt{Kind: KindChat, Message: "hi", History: []Turn{{Role: "system", Text: "a"}}}, `history[0]: invalid role "system"`},
		{"too long", Prompt{Kind: KindCommunityQA, Question: strings.Repeat("ज", MaxInputChars+1)}, "longer than"},
		{"unknown kind", Prompt{Kind: "analysis"}, "unknown kind"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.p.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}

	err := Prompt{Kind: KindChat}.Validate()
	if !errors.Is(err, ErrEmptyInput) {
		t.Errorf("expected ErrEmptyInput, got %v", err)
	}
}

func TestBuildPrompt(t *testing.T) {
	got, err := BuildPrompt(Prompt{Kind: KindFarmingInfo, Topic: "Mulching", Language: "hi"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `"Mulching"`) || !strings.Contains(got, "Respond entirely in Hindi") {
		t.Errorf("unexpected prompt: %s", got)
	}

	got, err = BuildPrompt(Prompt{Kind: KindCropCalendar, State: "Kerala", Season: "Rabi"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, `"Kerala"`) || !strings.Contains(got, `"Rabi"`) || !strings.Contains(got, "must be in English") {
		t.Errorf("unexpected calendar prompt: %s", got)
	}

	got, err = BuildPrompt(Prompt{Kind: KindChat, Message: "When to sow wheat?"})
	if err != nil || got != "When to sow wheat?" {
		t.Errorf("expected chat message passed through, got %q (err %v)", got, err)
	}

	if _, err := BuildPrompt(Prompt{Kind: KindCommunityQA}); err == nil {
		t.Error("expected validation error")
	}
}

func TestChatSystemInstruction(t *testing.T) {
	if !strings.Contains(ChatSystemInstruction("ta"), "Tamil") {
		t.Error("expected language name in system instruction")
	}
}

func TestLanguageName(t *testing.T) {
	if LanguageName("BN") != "Bengali" {
		t.Error("expected case-insensitive lookup")
	}
	if LanguageName("xx") != "English" || LanguageName("") != "English" {
		t.Error("expected English fallback")
	}
}

func TestPromptSubject(t *testing.T) {
	p := Prompt{Kind: KindCropCalendar, State: "Bihar", Season: "Zaid"}
	if p.Subject() != "Bihar / Zaid" {
		t.Errorf("unexpected subject %q", p.Subject())
	}
}
