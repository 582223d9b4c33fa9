package synthesis

import (
	"regexp"
	"strings"
)

type substitution struct {
	literal  string
	phonetic string
}

// pronunciations maps brand and product names that TTS engines reliably
// mispronounce to phonetic approximations. Applied in order before every
// request; longer literals come first so "PostgreSQL" is rewritten before
// the bare "SQL" rule can split it.
var pronunciations = []substitution{
	{"PostgreSQL", "postgres sequel"},
	{"SQL", "sequel"},
	{"nginx", "engine x"},
	{"kubectl", "cube control"},
	{"GIF", "jiff"},
	{"Nietzsche", "neecha"},
	{"Porsche", "porsha"},
	{"Huawei", "wah-way"},
	{"Xiaomi", "shao-mee"},
	{"LaTeX", "lah-tech"},
}

var emotionTagPattern = regexp.MustCompile(`\[\w+\]\s*`)

// CleanText prepares a dialogue line for a provider: the pronunciation
// table is always applied; emotion tags are stripped when the provider
// cannot consume them inline.
func CleanText(text string, provider Provider) string {
	cleaned := text
	for _, sub := range pronunciations {
		cleaned = strings.ReplaceAll(cleaned, sub.literal, sub.phonetic)
	}
	if !provider.SupportsEmotionTags {
		cleaned = emotionTagPattern.ReplaceAllString(cleaned, "")
	}
	return strings.TrimSpace(cleaned)
}
