package engine

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var baseCatalog []byte

// Catalog is the multiset of cards and gold nuggets a round is dealt from.
type Catalog struct {
	Deck []Entry[Card]
	Gold []Entry[int]
}

// CatalogFile represents the top-level YAML structure.
type CatalogFile struct {
	Tunnels         []TunnelEntry          `yaml:"tunnels"`
	Investigate     int                    `yaml:"investigate"`
	Collapse        int                    `yaml:"collapse"`
	Heal            []ToolEntry            `yaml:"heal"`
	HealAlternative []HealAlternativeEntry `yaml:"heal_alternative"`
	Debuff          []ToolEntry            `yaml:"debuff"`
	Gold            []GoldEntry            `yaml:"gold"`
}

type TunnelEntry struct {
	Outs     []string `yaml:"outs"`
	Deadlock bool     `yaml:"deadlock"`
	Count    int      `yaml:"count"`
}

type ToolEntry struct {
	Tool  string `yaml:"tool"`
	Count int    `yaml:"count"`
}

type HealAlternativeEntry struct {
	Tools []string `yaml:"tools"`
	Count int      `yaml:"count"`
}

type GoldEntry struct {
	Value int `yaml:"value"`
	Count int `yaml:"count"`
}

// DefaultCatalog returns the 67-card base set and the 28-nugget heap.
func DefaultCatalog() Catalog {
	c, err := ParseCatalog(baseCatalog)
	if err != nil {
		panic(fmt.Sprintf("base catalog: %v", err))
	}
	return c
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalog{}, err
	}
	return ParseCatalog(data)
}

// ParseCatalog converts a YAML catalog, keeping entry order.
func ParseCatalog(data []byte) (Catalog, error) {
	var cf CatalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog YAML: %w", err)
	}

	var c Catalog
	for _, t := range cf.Tunnels {
		outs, err := ParseDirectionSet(t.Outs)
		if err != nil {
			return Catalog{}, err
		}
		card, err := NewTunnelCard(t.Deadlock, outs.Directions()...)
		if err != nil {
			return Catalog{}, fmt.Errorf("tunnel %v: %w", t.Outs, err)
		}
		c.Deck = append(c.Deck, Entry[Card]{Value: card, Count: t.Count})
	}
	if cf.Investigate > 0 {
		c.Deck = append(c.Deck, Entry[Card]{Value: InvestigateCard{}, Count: cf.Investigate})
	}
	if cf.Collapse > 0 {
		c.Deck = append(c.Deck, Entry[Card]{Value: CollapseCard{}, Count: cf.Collapse})
	}
	for _, h := range cf.Heal {
		tool, err := ParseTool(h.Tool)
		if err != nil {
			return Catalog{}, err
		}
		c.Deck = append(c.Deck, Entry[Card]{Value: HealCard{Tool: tool}, Count: h.Count})
	}
	for _, h := range cf.HealAlternative {
		if len(h.Tools) != 2 {
			return Catalog{}, fmt.Errorf("%w: heal_alternative needs two tools, got %d", ErrBadCatalog, len(h.Tools))
		}
		first, err := ParseTool(h.Tools[0])
		if err != nil {
			return Catalog{}, err
		}
		second, err := ParseTool(h.Tools[1])
		if err != nil {
			return Catalog{}, err
		}
		card, err := NewHealAlternativeCard(first, second)
		if err != nil {
			return Catalog{}, err
		}
		c.Deck = append(c.Deck, Entry[Card]{Value: card, Count: h.Count})
	}
	for _, d := range cf.Debuff {
		tool, err := ParseTool(d.Tool)
		if err != nil {
			return Catalog{}, err
		}
		c.Deck = append(c.Deck, Entry[Card]{Value: DebuffCard{Tool: tool}, Count: d.Count})
	}
	for _, g := range cf.Gold {
		if g.Value <= 0 {
			return Catalog{}, fmt.Errorf("%w: gold value %d", ErrBadCatalog, g.Value)
		}
		c.Gold = append(c.Gold, Entry[int]{Value: g.Value, Count: g.Count})
	}

	if c.Size() == 0 {
		return Catalog{}, fmt.Errorf("%w: no cards", ErrBadCatalog)
	}
	return c, nil
}

// Size returns the number of cards in a full deck.
func (c Catalog) Size() int {
	n := 0
	for _, e := range c.Deck {
		if e.Count > 0 {
			n += e.Count
		}
	}
	return n
}
