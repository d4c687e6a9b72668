package source

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ppiankov/trustlens/internal/model"
)

func TestLoad_Embedded(t *testing.T) {
	reg, err := Load("")
	if err != nil {
		t.Fatalf("Load embedded: %v", err)
	}
	if reg.Len() < 30 {
		t.Errorf("expected a populated dataset, got %d entries", reg.Len())
	}

	all := reg.All()
	if all[0].Domain != "reuters.com" {
		t.Errorf("expected dataset order to be kept, first entry %q", all[0].Domain)
	}

	for _, p := range all {
		if p.CategoryTier == model.TierUnknown {
			t.Errorf("%s: tier should be set in the dataset", p.Domain)
		}
		if p.BiasLabel == model.BiasUnknown {
			t.Errorf("%s: bias should be set in the dataset", p.Domain)
		}
	}
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	data := []byte(`sources:
  - domain: Example.COM
    name: Example Daily
    trust: 70
    transparency: 60
    bias: Center
    tier: tier2
  - domain: other.org
    trust: 40
    transparency: 40
    bias: sideways
    tier: tier9
`)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	reg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if reg.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", reg.Len())
	}

	p, ok := reg.Lookup("example.com")
	if !ok {
		t.Fatal("expected lowercased domain to be registered")
	}
	if p.BiasLabel != model.BiasCenter || p.CategoryTier != model.Tier2 {
		t.Errorf("unexpected labels: %s %s", p.BiasLabel, p.CategoryTier)
	}

	other, _ := reg.Lookup("other.org")
	if other.Name != "other.org" {
		t.Errorf("expected name to default to domain, got %q", other.Name)
	}
	if other.BiasLabel != model.BiasUnknown || other.CategoryTier != model.TierUnknown {
		t.Errorf("expected unknown labels for bad values, got %s %s", other.BiasLabel, other.CategoryTier)
	}
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"missing domain", "sources:\n  - name: Nameless\n    trust: 50\n    transparency: 50\n"},
		{"duplicate domain", "sources:\n  - domain: a.com\n    trust: 1\n    transparency: 1\n  - domain: A.com\n    trust: 1\n    transparency: 1\n"},
		{"trust out of range", "sources:\n  - domain: a.com\n    trust: 101\n    transparency: 50\n"},
		{"negative transparency", "sources:\n  - domain: a.com\n    trust: 50\n    transparency: -1\n"},
		{"not yaml", "sources: [this is: broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, ErrInvalidDataset) {
				t.Errorf("expected ErrInvalidDataset, got %v", err)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestAll_ReturnsCopy(t *testing.T) {
	reg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}

	all := reg.All()
	all[0].TrustScore = 0

	p, _ := reg.Lookup(all[0].Domain)
	if p.TrustScore == 0 {
		t.Error("mutating All() result should not change the registry")
	}
}
