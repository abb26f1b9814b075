// Package profile defines the named 1G1R filter profiles. A profile is a
// read-only bundle of inclusion and preference rules: which kinds of titles
// survive at all, which languages are preferred, and whether licensed
// releases beat unlicensed ones. Profiles are loaded once per run and never
// derived or mutated at runtime.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-yaml"

	"github.com/fresh1g1r/fresh1g1r/pkg/gametags"
)

// Kind names accepted in a profile's include list.
const (
	KindGames       = "games"
	KindAddOns      = "add-ons"
	KindEducational = "educational"
	KindFixed       = "fixed"
	KindBonusDiscs  = "bonus-discs"
	KindDemos       = "demos"
	KindPrerelease  = "preproduction"
	KindPromotional = "promotional"
	KindUnlicensed  = "unlicensed"
)

var validKinds = map[string]bool{
	KindGames: true, KindAddOns: true, KindEducational: true,
	KindFixed: true, KindBonusDiscs: true, KindDemos: true,
	KindPrerelease: true, KindPromotional: true, KindUnlicensed: true,
}

// Profile is one named filter configuration.
type Profile struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description,omitempty"`
	Include     []string `yaml:"include"`
	// Languages is the preference order, most preferred first. Empty means
	// any language.
	Languages      []string `yaml:"languages,omitempty"`
	PreferLicensed bool     `yaml:"prefer-licensed"`

	includeSet map[string]bool
}

// Validate checks the include list and builds the lookup set.
func (p *Profile) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("profile has no name")
	}
	if len(p.Include) == 0 {
		return fmt.Errorf("profile %s: empty include list", p.Name)
	}
	p.includeSet = make(map[string]bool, len(p.Include))
	for _, k := range p.Include {
		if !validKinds[k] {
			return fmt.Errorf("profile %s: unknown include kind %q", p.Name, k)
		}
		p.includeSet[k] = true
	}
	return nil
}

// Includes reports whether a title with the given classification survives
// the profile's category filter. Every special kind the title carries must
// be included: a demo passes only when "demos" is listed, an unlicensed
// add-on needs both "add-ons" and "unlicensed".
func (p *Profile) Includes(info gametags.Info) bool {
	if !p.includeSet[categoryKind(info.Category)] {
		return false
	}
	if info.Production != gametags.Retail && !p.includeSet[productionKind(info.Production)] {
		return false
	}
	if info.Licensing != gametags.Licensed && !p.includeSet[KindUnlicensed] {
		return false
	}
	return true
}

func categoryKind(c gametags.Category) string {
	switch c {
	case gametags.CategoryAddOn:
		return KindAddOns
	case gametags.CategoryEducational:
		return KindEducational
	case gametags.CategoryFixed:
		return KindFixed
	case gametags.CategoryBonusDisc:
		return KindBonusDiscs
	default:
		return KindGames
	}
}

func productionKind(p gametags.Production) string {
	switch p {
	case gametags.Demo:
		return KindDemos
	case gametags.Promotional:
		return KindPromotional
	default:
		return KindPrerelease
	}
}

// Builtins returns the three shipped profiles. These are used when no
// config/<name>/profile.yaml overrides exist.
func Builtins() []*Profile {
	profiles := []*Profile{
		{
			Name:        "Hearto",
			Description: "Keep everything worth preserving: games, add-ons, educational titles, demos, prototypes and unlicensed releases. Any language.",
			Include: []string{
				KindGames, KindAddOns, KindEducational, KindFixed, KindBonusDiscs,
				KindDemos, KindPrerelease, KindPromotional, KindUnlicensed,
			},
		},
		{
			Name:           "PropeR",
			Description:    "Retail games and add-ons in any language, licensed releases preferred.",
			Include:        []string{KindGames, KindAddOns, KindUnlicensed},
			PreferLicensed: true,
		},
		{
			Name:           "McLean",
			Description:    "English-first licensed retail games only.",
			Include:        []string{KindGames},
			Languages:      []string{"En"},
			PreferLicensed: true,
		},
	}
	for _, p := range profiles {
		if err := p.Validate(); err != nil {
			panic(err)
		}
	}
	return profiles
}

// Load reads a single profile document.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Discover loads every config/<name>/profile.yaml under configDir, sorted by
// name. When configDir doesn't exist or holds no profiles, the builtins are
// returned instead.
func Discover(configDir string) ([]*Profile, error) {
	entries, err := os.ReadDir(configDir)
	if err != nil {
		if os.IsNotExist(err) {
			return Builtins(), nil
		}
		return nil, err
	}

	var profiles []*Profile
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(configDir, e.Name(), "profile.yaml")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		p, err := Load(path)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	if len(profiles) == 0 {
		return Builtins(), nil
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles, nil
}
