package synthesis

import (
	"fmt"
	"strings"
)

// Provider describes a TTS backend and its capabilities. The capability
// flags keep provider differences out of the client's control flow:
// adding a backend means adding a registry entry, not another branch.
type Provider struct {
	Name                string
	BaseURL             string
	DefaultModel        string
	SupportsEmotionTags bool
}

var providers = []Provider{
	{
		Name:                "inflect",
		BaseURL:             "https://api.inflect.example.com/v1",
		DefaultModel:        "inflect-dialog-2",
		SupportsEmotionTags: true,
	},
	{
		Name:                "plaintone",
		BaseURL:             "https://api.plaintone.example.com/v2",
		DefaultModel:        "plaintone-neural",
		SupportsEmotionTags: false,
	},
}

var providerByName = func() map[string]Provider {
	byName := make(map[string]Provider, len(providers))
	for _, p := range providers {
		byName[p.Name] = p
	}
	return byName
}()

// LookupProvider resolves a provider by name.
func LookupProvider(name string) (Provider, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	provider, ok := providerByName[normalized]
	if !ok {
		return Provider{}, fmt.Errorf("unknown tts provider %q", name)
	}
	return provider, nil
}

// ProviderNames returns the registered provider names.
func ProviderNames() []string {
	names := make([]string, 0, len(providers))
	for _, p := range providers {
		names = append(names, p.Name)
	}
	return names
}
