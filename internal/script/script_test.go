package script

import (
	"strings"
	"testing"
	"time"
)

func TestParseBasicDialogue(t *testing.T) {
	raw := "HOST: [cheerfully] Good morning!\nGUEST: [thoughtfully] Thanks! Glad to be here.\n"
	lines := Parse(raw)
	if len(lines) != 2 {
		t.Fatalf("parsed %d lines, want 2", len(lines))
	}
	if lines[0].Speaker != SpeakerHost || lines[0].Emotion != "cheerfully" || lines[0].Text != "Good morning!" {
		t.Errorf("line 0 = %+v", lines[0])
	}
	if lines[1].Speaker != SpeakerGuest || lines[1].Emotion != "thoughtfully" {
		t.Errorf("line 1 = %+v", lines[1])
	}
}

func TestParseEmotionOptional(t *testing.T) {
	lines := Parse("HOST: No tag on this one.")
	if len(lines) != 1 {
		t.Fatalf("parsed %d lines", len(lines))
	}
	if lines[0].Emotion != "" {
		t.Errorf("emotion = %q, want empty", lines[0].Emotion)
	}
	if lines[0].Text != "No tag on this one." {
		t.Errorf("text = %q", lines[0].Text)
	}
}

func TestParseDropsNonMatchingLines(t *testing.T) {
	raw := strings.Join([]string{
		"Here is the script you asked for:",
		"",
		"HOST: Welcome back.",
		"(they both laugh)",
		"NARRATOR: should be ignored",
		"host: lower case is not a speaker token",
		"GUEST: Thanks!",
		"HOST:",
	}, "\n")
	lines := Parse(raw)
	if len(lines) != 2 {
		t.Fatalf("parsed %d lines, want 2: %+v", len(lines), lines)
	}
	for _, line := range lines {
		if line.Speaker != SpeakerHost && line.Speaker != SpeakerGuest {
			t.Errorf("speaker = %q", line.Speaker)
		}
	}
}

func TestParseEmptyInput(t *testing.T) {
	if lines := Parse(""); len(lines) != 0 {
		t.Errorf("parsed %d lines from empty input", len(lines))
	}
	if lines := Parse("just some prose with no speakers"); len(lines) != 0 {
		t.Errorf("parsed %d lines from prose", len(lines))
	}
}

func TestValidateEmotions(t *testing.T) {
	lines := []Line{
		{Speaker: SpeakerHost, Emotion: "cheerfully", Text: "Hi."},
		{Speaker: SpeakerGuest, Emotion: "belligerently", Text: "What?"},
		{Speaker: SpeakerHost, Text: "No tag."},
	}
	warnings := ValidateEmotions(lines)
	if len(warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", warnings)
	}
	if !strings.Contains(warnings[0], "belligerently") || !strings.Contains(warnings[0], "line 2") {
		t.Errorf("warning = %q", warnings[0])
	}
}

func TestEstimateDuration(t *testing.T) {
	// 150 words at 150 wpm is exactly one minute.
	words := strings.Repeat("word ", 150)
	lines := []Line{{Speaker: SpeakerHost, Text: strings.TrimSpace(words)}}
	if got := EstimateDuration(lines); got != time.Minute {
		t.Errorf("duration = %v, want 1m", got)
	}
	if got := EstimateDuration(nil); got != 0 {
		t.Errorf("duration = %v, want 0", got)
	}
}
