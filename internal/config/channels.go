package config

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// channelIDRe matches Slack channel and DM IDs (e.g. C0123ABCD, D08SS90DC3X).
var channelIDRe = regexp.MustCompile(`^[CDG][A-Z0-9]{8,}$`)

// Channel is one configured Slack channel in channels.yaml.
type Channel struct {
	Name    string `yaml:"name"`
	ID      string `yaml:"id"`
	Purpose string `yaml:"purpose,omitempty"`
}

// Registry is the channel registry stored in .switchlog/channels.yaml.
type Registry struct {
	Channels []Channel `yaml:"channels"`
}

// LoadRegistry reads and validates the channel registry from the given path.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	seen := make(map[string]bool)
	for i, ch := range reg.Channels {
		if ch.Name == "" {
			return nil, fmt.Errorf("channel entry %d must have a 'name'", i+1)
		}
		if !channelIDRe.MatchString(ch.ID) {
			return nil, fmt.Errorf("channel %q: invalid Slack channel ID %q", ch.Name, ch.ID)
		}
		if seen[ch.Name] {
			return nil, fmt.Errorf("duplicate channel name %q", ch.Name)
		}
		seen[ch.Name] = true
	}

	return &reg, nil
}

// Save writes the registry to channels.yaml in the workspace at root.
func (r *Registry) Save(root string) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encoding channel registry: %w", err)
	}

	if err := os.WriteFile(ChannelsPath(root), data, 0644); err != nil {
		return fmt.Errorf("writing channel registry: %w", err)
	}

	return nil
}

// ByName returns the channel with the given name.
func (r *Registry) ByName(name string) (*Channel, error) {
	for i := range r.Channels {
		if r.Channels[i].Name == name {
			return &r.Channels[i], nil
		}
	}

	names := make([]string, 0, len(r.Channels))
	for _, ch := range r.Channels {
		names = append(names, ch.Name)
	}
	sort.Strings(names)
	return nil, fmt.Errorf("channel %q not found in registry; configured channels: %v", name, names)
}

// ByID returns the channel with the given Slack channel ID, or nil if the
// ID is not registered.
func (r *Registry) ByID(id string) *Channel {
	for i := range r.Channels {
		if r.Channels[i].ID == id {
			return &r.Channels[i]
		}
	}
	return nil
}
