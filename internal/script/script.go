package script

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Speaker identifies one of the two dialogue roles.
type Speaker string

const (
	SpeakerHost  Speaker = "HOST"
	SpeakerGuest Speaker = "GUEST"
)

// Line is one parsed dialogue turn. Immutable once parsed.
type Line struct {
	Speaker Speaker
	Emotion string
	Text    string
}

// linePattern matches `SPEAKER: [emotion] text` with the emotion tag
// optional. Speaker tokens are case-sensitive by contract with the
// upstream script generator.
var linePattern = regexp.MustCompile(`^(HOST|GUEST):\s*(?:\[(\w+)\]\s*)?(.+)$`)

// SupportedEmotions is the fixed vocabulary the synthesis providers
// understand. Unknown tags produce warnings, never errors.
var SupportedEmotions = []string{
	"cheerfully", "thoughtfully", "seriously", "excitedly", "skeptically",
	"laughing", "sighing", "whispering", "interrupting", "curiously",
	"dramatically", "calmly", "enthusiastically",
}

var supportedEmotionSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(SupportedEmotions))
	for _, emotion := range SupportedEmotions {
		set[emotion] = struct{}{}
	}
	return set
}()

// Parse splits raw script text into dialogue lines. The parser is
// deliberately permissive: lines that do not match the grammar (blank
// lines, stray LLM commentary, scene directions) are dropped silently.
// Callers must treat an empty result as a validation error and refuse to
// synthesize.
func Parse(raw string) []Line {
	var lines []Line
	for _, candidate := range strings.Split(raw, "\n") {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		match := linePattern.FindStringSubmatch(candidate)
		if match == nil {
			continue
		}
		text := strings.TrimSpace(match[3])
		if text == "" {
			continue
		}
		lines = append(lines, Line{
			Speaker: Speaker(match[1]),
			Emotion: match[2],
			Text:    text,
		})
	}
	return lines
}

// ValidateEmotions returns a warning per emotion tag outside the supported
// vocabulary. Warnings never block synthesis.
func ValidateEmotions(lines []Line) []string {
	var warnings []string
	for i, line := range lines {
		if line.Emotion == "" {
			continue
		}
		if _, ok := supportedEmotionSet[strings.ToLower(line.Emotion)]; !ok {
			warnings = append(warnings, fmt.Sprintf("line %d: unsupported emotion tag [%s]", i+1, line.Emotion))
		}
	}
	return warnings
}

// wordsPerMinute is the speaking-rate heuristic behind EstimateDuration.
const wordsPerMinute = 150

// EstimateDuration approximates total speech time from word count. Used
// only for client-facing progress estimates; audio timing comes from
// decoded sample counts in the assembler.
func EstimateDuration(lines []Line) time.Duration {
	words := 0
	for _, line := range lines {
		words += len(strings.Fields(line.Text))
	}
	if words == 0 {
		return 0
	}
	seconds := float64(words) / wordsPerMinute * 60
	return time.Duration(seconds * float64(time.Second))
}
