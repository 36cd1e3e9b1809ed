package api

import (
	"errors"
	"strings"
)

// Provider identifies one of the upstream AI services. The set is closed:
// translation, normalization and catalog rules all branch on it, so a new
// provider means a new constant plus one arm in each of those switches.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderOpenAI Provider = "openai"
)

// ErrInvalidProvider is returned when a caller names a provider outside the
// enumerated set. It is raised before any network I/O happens.
var ErrInvalidProvider = errors.New("Invalid AI provider.")

// ParseProvider is the single point where raw strings become Provider
// values. Matching is case-insensitive; everything downstream works with
// the typed constant.
func ParseProvider(s string) (Provider, error) {
	switch Provider(strings.ToLower(s)) {
	case ProviderGoogle:
		return ProviderGoogle, nil
	case ProviderOpenAI:
		return ProviderOpenAI, nil
	}
	return "", ErrInvalidProvider
}

// DisplayName is the human-readable provider name used in user-facing
// messages ("Google Gemini API Key not configured." and the like).
func (p Provider) DisplayName() string {
	switch p {
	case ProviderGoogle:
		return "Google Gemini"
	case ProviderOpenAI:
		return "OpenAI"
	}
	return string(p)
}

// Providers lists every supported provider in catalog order.
func Providers() []Provider {
	return []Provider{ProviderGoogle, ProviderOpenAI}
}
