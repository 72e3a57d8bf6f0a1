package ai

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrUnknownProvider is returned for a provider name the registry does not hold.
	ErrUnknownProvider = errors.New("unknown AI provider")
	// ErrInvalidModel is returned for a model name that is not a plain identifier.
	ErrInvalidModel = errors.New("invalid model name")
)

var modelName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._:-]{0,99}$`)

// ProviderInfo describes one selectable provider.
type ProviderInfo struct {
	Name         string `json:"name"`
	Configured   bool   `json:"configured"`
	DefaultModel string `json:"defaultModel"`
	Default      bool   `json:"default"`
}

// Registry hands out generators for per-request provider and model choices.
// The zero choice maps to the default generator built at startup.
type Registry struct {
	def             *Generator
	defaultProvider string
	providers       map[string]ProviderConfig
	names           []string
	settings        Settings
	newModel        func(ProviderConfig) (Model, error)
}

// NewRegistry wraps the default generator. providers lists every selectable
// provider with its credential and default model; the default provider should
// be among them.
func NewRegistry(def *Generator, defaultProvider string, settings Settings, providers ...ProviderConfig) *Registry {
	r := &Registry{
		def:             def,
		defaultProvider: CanonicalProvider(defaultProvider),
		providers:       make(map[string]ProviderConfig, len(providers)),
		settings:        settings,
		newModel:        NewModel,
	}
	for _, p := range providers {
		name := CanonicalProvider(p.Provider)
		if _, dup := r.providers[name]; !dup {
			r.names = append(r.names, name)
		}
		p.Provider = name
		r.providers[name] = p
	}
	return r
}

// CanonicalProvider folds provider aliases: "" and "google" mean gemini.
func CanonicalProvider(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "google" {
		return "gemini"
	}
	return name
}

// Default returns the startup generator.
func (r *Registry) Default() *Generator { return r.def }

// Generator returns the generator for a provider and model. Empty values fall
// back to the default provider and that provider's default model.
func (r *Registry) Generator(provider, model string) (*Generator, error) {
	name := r.defaultProvider
	if strings.TrimSpace(provider) != "" {
		name = CanonicalProvider(provider)
	}
	if name == r.defaultProvider && model == "" {
		return r.def, nil
	}

	cfg, ok := r.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownProvider, provider)
	}
	if model != "" {
		if !modelName.MatchString(model) {
			return nil, fmt.Errorf("%w %q", ErrInvalidModel, model)
		}
		cfg.Model = model
	}

	m, err := r.newModel(cfg)
	if err != nil {
		return nil, err
	}
	return NewGenerator(m, nil, r.settings), nil
}

// Providers lists the selectable providers in registration order.
func (r *Registry) Providers() []ProviderInfo {
	out := make([]ProviderInfo, 0, len(r.names))
	for _, name := range r.names {
		cfg := r.providers[name]
		out = append(out, ProviderInfo{
			Name:         name,
			Configured:   cfg.APIKey != "",
			DefaultModel: cfg.Model,
			Default:      name == r.defaultProvider,
		})
	}
	return out
}
