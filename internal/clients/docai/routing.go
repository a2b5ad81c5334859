package docai

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed providers.yaml
var defaultProvidersYAML []byte

// RoutingConfig decides which provider handles documents for a given
// material type. The embedded providers.yaml ships the defaults; setting
// DOC_PROVIDERS_YAML to a file path swaps in an operator-supplied mapping.
type RoutingConfig struct {
	Default   string            `yaml:"default"`
	Materials map[string]string `yaml:"materials"`
}

func LoadRoutingConfig() (*RoutingConfig, error) {
	raw := defaultProvidersYAML
	if path := strings.TrimSpace(os.Getenv("DOC_PROVIDERS_YAML")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read DOC_PROVIDERS_YAML %q: %w", path, err)
		}
		raw = b
	}

	var cfg RoutingConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse provider routing config: %w", err)
	}
	cfg.Default = strings.TrimSpace(cfg.Default)
	if cfg.Default == "" {
		cfg.Default = ProviderChatbot
	}
	return &cfg, nil
}

// ProviderFor returns the provider name for a material type, falling back to
// the default when the type is unmapped.
func (c *RoutingConfig) ProviderFor(materialType string) string {
	if c == nil {
		return ProviderChatbot
	}
	if p, ok := c.Materials[materialType]; ok && strings.TrimSpace(p) != "" {
		return strings.TrimSpace(p)
	}
	return c.Default
}

// Registry holds the configured provider clients keyed by name and resolves
// the one a material type routes to.
type Registry struct {
	routing *RoutingConfig
	clients map[string]DocumentClient
}

func NewRegistry(routing *RoutingConfig, clients ...DocumentClient) *Registry {
	byName := make(map[string]DocumentClient, len(clients))
	for _, c := range clients {
		if c == nil {
			continue
		}
		byName[c.Provider()] = c
	}
	return &Registry{routing: routing, clients: byName}
}

func (r *Registry) ByProvider(name string) (DocumentClient, error) {
	if r == nil {
		return nil, fmt.Errorf("document provider registry unavailable")
	}
	c, ok := r.clients[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("document provider %q not configured", name)
	}
	return c, nil
}

func (r *Registry) ForMaterialType(materialType string) (DocumentClient, error) {
	if r == nil {
		return nil, fmt.Errorf("document provider registry unavailable")
	}
	return r.ByProvider(r.routing.ProviderFor(materialType))
}

// Providers lists the configured provider names, for logging at startup.
func (r *Registry) Providers() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.clients))
	for name := range r.clients {
		out = append(out, name)
	}
	return out
}
