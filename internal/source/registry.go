package source

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/trustlens/internal/model"
)

//go:embed sources.yaml
var embeddedSources []byte

// ErrInvalidDataset is returned when a source dataset cannot be used
var ErrInvalidDataset = errors.New("invalid source dataset")

// Registry is the immutable reference dataset of news outlets.
// Entries keep the order they were listed in.
type Registry struct {
	entries  []model.SourceProfile
	byDomain map[string]int
}

type dataset struct {
	Sources []model.SourceProfile `yaml:"sources"`
}

// Load reads the dataset at path, or the embedded dataset when path is empty
func Load(path string) (*Registry, error) {
	if path == "" {
		return Parse(embeddedSources)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read source dataset: %w", err)
	}
	return Parse(data)
}

// Parse builds a registry from YAML
func Parse(data []byte) (*Registry, error) {
	var ds dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDataset, err)
	}

	reg := &Registry{
		entries:  make([]model.SourceProfile, 0, len(ds.Sources)),
		byDomain: make(map[string]int, len(ds.Sources)),
	}

	for i, p := range ds.Sources {
		p.Domain = strings.ToLower(strings.TrimSpace(p.Domain))
		p.Name = strings.TrimSpace(p.Name)
		if p.Domain == "" {
			return nil, fmt.Errorf("%w: entry %d has no domain", ErrInvalidDataset, i)
		}
		if _, dup := reg.byDomain[p.Domain]; dup {
			return nil, fmt.Errorf("%w: duplicate domain %q", ErrInvalidDataset, p.Domain)
		}
		if !inRange(p.TrustScore) || !inRange(p.TransparencyScore) {
			return nil, fmt.Errorf("%w: %s scores must be within 0-100", ErrInvalidDataset, p.Domain)
		}
		if p.Name == "" {
			p.Name = p.Domain
		}
		p.BiasLabel = model.ParseBiasLabel(strings.ToLower(string(p.BiasLabel)))
		p.CategoryTier = model.ParseCategoryTier(strings.ToLower(string(p.CategoryTier)))

		reg.byDomain[p.Domain] = len(reg.entries)
		reg.entries = append(reg.entries, p)
	}

	return reg, nil
}

// Lookup returns the profile registered for an exact domain
func (r *Registry) Lookup(domain string) (model.SourceProfile, bool) {
	idx, ok := r.byDomain[strings.ToLower(domain)]
	if !ok {
		return model.SourceProfile{}, false
	}
	return r.entries[idx], true
}

// All returns every profile in dataset order
func (r *Registry) All() []model.SourceProfile {
	out := make([]model.SourceProfile, len(r.entries))
	copy(out, r.entries)
	return out
}

// Len returns the number of registered sources
func (r *Registry) Len() int {
	return len(r.entries)
}

func inRange(v int) bool {
	return v >= 0 && v <= 100
}
