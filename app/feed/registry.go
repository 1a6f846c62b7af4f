package feed

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultExcludedURLPrefixes applies when the registry file does not set
// exclude_url_prefixes. Spanish-locale wire copies duplicate the English
// stories the hub already carries.
var DefaultExcludedURLPrefixes = []string{
	"https://www.reuters.com/es/",
}

var validFilterFields = map[string]bool{
	"title":      true,
	"summary":    true,
	"content":    true,
	"link":       true,
	"categories": true,
}

// Registry is the static list of feeds to ingest, in file order.
type Registry struct {
	Sources            []Source
	ExcludeURLPrefixes []string
}

type registryFile struct {
	ExcludeURLPrefixes *[]string `yaml:"exclude_url_prefixes"`
	Feeds              []Source  `yaml:"feeds"`
}

func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read feeds file: %w", err)
	}

	registry, err := ParseRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("invalid feeds file %s: %w", path, err)
	}

	slog.Debug("Feed registry loaded", "path", path, "feeds", len(registry.Sources), "enabled", len(registry.Enabled()))

	return registry, nil
}

func ParseRegistry(data []byte) (*Registry, error) {
	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	registry := &Registry{
		Sources:            file.Feeds,
		ExcludeURLPrefixes: DefaultExcludedURLPrefixes,
	}
	if file.ExcludeURLPrefixes != nil {
		registry.ExcludeURLPrefixes = *file.ExcludeURLPrefixes
	}

	if err := registry.validate(); err != nil {
		return nil, err
	}

	return registry, nil
}

func (r *Registry) Enabled() []Source {
	enabled := make([]Source, 0, len(r.Sources))
	for _, source := range r.Sources {
		if source.IsEnabled() {
			enabled = append(enabled, source)
		}
	}
	return enabled
}

func (r *Registry) validate() error {
	seen := make(map[string]int, len(r.Sources))

	for i, source := range r.Sources {
		if source.URL == "" {
			return fmt.Errorf("feed at index %d: url is required", i)
		}

		u, err := url.Parse(source.URL)
		if err != nil {
			return fmt.Errorf("feed at index %d: invalid url: %w", i, err)
		}
		if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("feed at index %d: url must be absolute http(s): %s", i, source.URL)
		}

		if prev, ok := seen[source.URL]; ok {
			return fmt.Errorf("feed at index %d duplicates feed at index %d: %s", i, prev, source.URL)
		}
		seen[source.URL] = i

		if source.Timeout < 0 {
			return fmt.Errorf("feed at index %d: timeout must be non-negative", i)
		}

		for j, filter := range source.Filters {
			if !validFilterFields[filter.Field] {
				return fmt.Errorf("feed at index %d: invalid filter field at index %d: %s", i, j, filter.Field)
			}
			if len(filter.Includes) == 0 && len(filter.Excludes) == 0 {
				return fmt.Errorf("feed at index %d: filter at index %d must have at least one include or exclude rule", i, j)
			}
		}
	}

	return nil
}
