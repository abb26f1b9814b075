package profile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fresh1g1r/fresh1g1r/pkg/gametags"
)

func TestBuiltinsValidate(t *testing.T) {
	profiles := Builtins()
	if len(profiles) != 3 {
		t.Fatalf("expected 3 builtin profiles, got %d", len(profiles))
	}

	names := map[string]bool{}
	for _, p := range profiles {
		names[p.Name] = true
	}
	for _, want := range []string{"Hearto", "PropeR", "McLean"} {
		if !names[want] {
			t.Fatalf("missing builtin profile %s", want)
		}
	}
}

func TestIncludesCategorySemantics(t *testing.T) {
	mcLean := mustProfile(t, "McLean")
	hearto := mustProfile(t, "Hearto")

	retail := gametags.Classify("Game (USA)", "Games")
	demo := gametags.Classify("Game (USA) (Demo)", "Games")
	unl := gametags.Classify("Game (USA) (Unl)", "Games")
	bonus := gametags.Classify("Extras (USA)", "Bonus Discs")

	if !mcLean.Includes(retail) {
		t.Fatal("McLean must include retail games")
	}
	if mcLean.Includes(demo) || mcLean.Includes(unl) || mcLean.Includes(bonus) {
		t.Fatal("McLean must exclude demos, unlicensed and bonus discs")
	}
	if !hearto.Includes(demo) || !hearto.Includes(unl) || !hearto.Includes(bonus) {
		t.Fatal("Hearto must include demos, unlicensed and bonus discs")
	}
}

func TestIncludesNeedsEveryKind(t *testing.T) {
	p := &Profile{Name: "t", Include: []string{KindGames, KindDemos}}
	if err := p.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}

	// An unlicensed demo needs "unlicensed" too.
	info := gametags.Classify("Game (USA) (Demo) (Unl)", "Games")
	if p.Includes(info) {
		t.Fatal("unlicensed demo must not pass without the unlicensed kind")
	}
}

func TestValidateRejectsUnknownKind(t *testing.T) {
	p := &Profile{Name: "t", Include: []string{"games", "bogus"}}
	if err := p.Validate(); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestLoadProfileYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	doc := `name: Custom
description: test profile
include:
  - games
  - add-ons
languages: [En, Fr]
prefer-licensed: true
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if p.Name != "Custom" || !p.PreferLicensed {
		t.Fatalf("bad profile: %+v", p)
	}
	if len(p.Languages) != 2 || p.Languages[0] != "En" {
		t.Fatalf("bad languages: %v", p.Languages)
	}
	if !p.Includes(gametags.Classify("Game (USA)", "Games")) {
		t.Fatal("loaded profile should include retail games")
	}
}

func TestDiscoverFallsBackToBuiltins(t *testing.T) {
	profiles, err := Discover(filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(profiles) != 3 {
		t.Fatalf("expected builtins, got %d profiles", len(profiles))
	}
}

func TestDiscoverReadsProfileDirs(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"Zed", "Abc"} {
		sub := filepath.Join(dir, name)
		if err := os.MkdirAll(sub, 0o755); err != nil {
			t.Fatal(err)
		}
		doc := "name: " + name + "\ninclude: [games]\n"
		if err := os.WriteFile(filepath.Join(sub, "profile.yaml"), []byte(doc), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	profiles, err := Discover(dir)
	if err != nil {
		t.Fatalf("discover: %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("expected 2 profiles, got %d", len(profiles))
	}
	if profiles[0].Name != "Abc" || profiles[1].Name != "Zed" {
		t.Fatalf("profiles not sorted: %s, %s", profiles[0].Name, profiles[1].Name)
	}
}

func mustProfile(t *testing.T, name string) *Profile {
	t.Helper()
	for _, p := range Builtins() {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("no builtin profile %q", name)
	return nil
}
