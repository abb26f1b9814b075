package gametags

import (
	"strings"
	"testing"
)

func TestClassifyRetailDefault(t *testing.T) {
	info := Classify("Super Mario World (USA)", "Games")

	if info.NormTitle != "Super Mario World" {
		t.Fatalf("expected normalized title, got %q", info.NormTitle)
	}
	if info.Category != CategoryGame || info.Licensing != Licensed || info.Production != Retail {
		t.Fatalf("expected retail licensed game, got %v/%v/%v", info.Category, info.Licensing, info.Production)
	}
	if len(info.Regions) != 1 || info.Regions[0] != "USA" {
		t.Fatalf("expected region USA, got %v", info.Regions)
	}
}

func TestClassifyLanguageList(t *testing.T) {
	info := Classify("Some Game (Europe) (En,Fr,De)", "")

	want := []string{"En", "Fr", "De"}
	if len(info.Languages) != len(want) {
		t.Fatalf("expected languages %v, got %v", want, info.Languages)
	}
	for i := range want {
		if info.Languages[i] != want[i] {
			t.Fatalf("expected languages %v, got %v", want, info.Languages)
		}
	}
	if info.NormTitle != "Some Game" {
		t.Fatalf("language tag not stripped: %q", info.NormTitle)
	}
}

func TestClassifyInfersLanguageFromRegion(t *testing.T) {
	info := Classify("Some Game (Japan)", "")

	if len(info.Languages) != 1 || info.Languages[0] != "Ja" {
		t.Fatalf("expected inferred Ja, got %v", info.Languages)
	}
}

func TestClassifySpecialTags(t *testing.T) {
	cases := []struct {
		title      string
		licensing  Licensing
		production Production
	}{
		{"Game (USA) (Unl)", Unlicensed, Retail},
		{"Game (USA) (Pirate)", Unlicensed, Retail},
		{"Game (World) (Aftermarket)", Homebrew, Retail},
		{"Game (Japan) (Proto)", Licensed, Proto},
		{"Game (Japan) (Beta 2)", Licensed, Beta},
		{"Game (USA) (Demo)", Licensed, Demo},
		{"Game (USA) (Sample)", Licensed, Demo},
		{"Game (Europe) (Promo)", Licensed, Promotional},
	}
	for _, c := range cases {
		info := Classify(c.title, "")
		if info.Licensing != c.licensing || info.Production != c.production {
			t.Fatalf("%s: got %v/%v, want %v/%v", c.title, info.Licensing, info.Production, c.licensing, c.production)
		}
		if info.NormTitle != "Game" {
			t.Fatalf("%s: tags not stripped: %q", c.title, info.NormTitle)
		}
	}
}

func TestClassifyUnknownTagStaysInTitle(t *testing.T) {
	info := Classify("Final Fantasy VII (USA) (Disc 1)", "")

	if info.NormTitle != "Final Fantasy VII (Disc 1)" {
		t.Fatalf("disc tag should be kept, got %q", info.NormTitle)
	}
}

func TestClassifyDATCategory(t *testing.T) {
	if got := Classify("Thing (USA)", "Bonus Discs").Category; got != CategoryBonusDisc {
		t.Fatalf("expected bonus-disc, got %v", got)
	}
	if got := Classify("Thing (USA)", "Demos").Production; got != Demo {
		t.Fatalf("expected demo production, got %v", got)
	}
	if got := Classify("Thing (USA)", "Preproduction").Production; got != Proto {
		t.Fatalf("expected proto production, got %v", got)
	}
}

func TestClassifyRevision(t *testing.T) {
	if got := Classify("Game (USA) (Rev 1)", "").Revision; got != "1" {
		t.Fatalf("expected revision 1, got %q", got)
	}
	if got := Classify("Game (Japan) (v1.1)", "").Revision; got != "1.1" {
		t.Fatalf("expected revision 1.1, got %q", got)
	}
	if got := Classify("Game (USA) (Rev A)", "").Revision; got != "A" {
		t.Fatalf("expected revision A, got %q", got)
	}
}

// Words that merely start with v are not revisions; stripping them would
// merge unrelated titles into one group.
func TestClassifyRevisionNeedsDigitAfterBareV(t *testing.T) {
	for _, title := range []string{"Game (USA) (Versus)", "Game (USA) (VHS)"} {
		info := Classify(title, "")
		if info.Revision != "" {
			t.Fatalf("%s: false revision %q", title, info.Revision)
		}
		if !strings.Contains(info.NormTitle, "(") {
			t.Fatalf("%s: unrecognized tag stripped, NormTitle = %q", title, info.NormTitle)
		}
	}
}

func TestRegionKeyOrdering(t *testing.T) {
	world := RegionKey([]string{"World"})
	usa := RegionKey([]string{"USA"})
	europe := RegionKey([]string{"Europe"})
	japan := RegionKey([]string{"Japan"})
	brazil := RegionKey([]string{"Brazil"})
	korea := RegionKey([]string{"Korea"})

	if !(world < usa && usa < europe && europe < japan && japan < brazil) {
		t.Fatalf("priority order broken: %q %q %q %q %q", world, usa, europe, japan, brazil)
	}
	if !(brazil < korea) {
		t.Fatalf("unlisted regions should order by name: %q vs %q", brazil, korea)
	}
}

func TestRegionKeyMultiRegionUsesBest(t *testing.T) {
	if RegionKey([]string{"Japan", "USA"}) != RegionKey([]string{"USA"}) {
		t.Fatal("multi-region title should rank by its best region")
	}
}

func TestCompareRevision(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "1", -1},
		{"2", "1", 1},
		{"1.1", "1.2", -1},
		{"1.1", "1.1", 0},
		{"1.10", "1.9", 1},
		{"A", "B", -1},
	}
	for _, c := range cases {
		if got := CompareRevision(c.a, c.b); got != c.want {
			t.Fatalf("CompareRevision(%q, %q) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}
