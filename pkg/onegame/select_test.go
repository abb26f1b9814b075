package onegame

import (
	"reflect"
	"testing"

	"github.com/fresh1g1r/fresh1g1r/pkg/dat"
	"github.com/fresh1g1r/fresh1g1r/pkg/profile"
)

func profileByName(t *testing.T, name string) *profile.Profile {
	t.Helper()
	for _, p := range profile.Builtins() {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("no builtin profile %q", name)
	return nil
}

func groupOf(t *testing.T, games ...dat.Game) *TitleGroup {
	t.Helper()
	groups, diags := GroupEntries(games, nil)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	if len(groups) != 1 {
		t.Fatalf("expected a single group, got %d", len(groups))
	}
	return groups[0]
}

func TestSelectRegionPriorityAfterLanguageFilter(t *testing.T) {
	// McLean prefers English: the Japanese release falls to the language
	// filter, then region priority picks USA over Europe.
	group := groupOf(t,
		game("Cool Game (USA)", "a1"),
		game("Cool Game (Europe)", "a2"),
		game("Cool Game (Japan)", "a3"),
	)

	res := Select(group, profileByName(t, "McLean"))
	if res.Winner == nil || res.Winner.Game.Name != "Cool Game (USA)" {
		t.Fatalf("expected USA winner, got %+v", res.Winner)
	}

	reasons := map[string]ExclusionReason{}
	for _, e := range res.Excluded {
		reasons[e.Entry.Game.Name] = e.Reason
	}
	if reasons["Cool Game (Japan)"] != ReasonLanguage {
		t.Fatalf("Japan should be language-filtered, got %q", reasons["Cool Game (Japan)"])
	}
	if reasons["Cool Game (Europe)"] != ReasonRegion {
		t.Fatalf("Europe should lose on region priority, got %q", reasons["Cool Game (Europe)"])
	}
}

func TestSelectPrefersLicensed(t *testing.T) {
	group := groupOf(t,
		game("Cool Game (USA) (Unl)", "a1"),
		game("Cool Game (Europe)", "a2"),
	)

	res := Select(group, profileByName(t, "PropeR"))
	if res.Winner == nil || res.Winner.Game.Name != "Cool Game (Europe)" {
		t.Fatalf("expected licensed Europe winner, got %+v", res.Winner)
	}
	if len(res.Excluded) != 1 || res.Excluded[0].Reason != ReasonLicensing {
		t.Fatalf("expected licensing exclusion, got %+v", res.Excluded)
	}
}

func TestSelectCategoryFilteredGroup(t *testing.T) {
	group := groupOf(t, game("Cool Game (USA) (Demo)", "a1"))

	res := Select(group, profileByName(t, "McLean"))
	if res.Winner != nil {
		t.Fatalf("expected no winner, got %q", res.Winner.Game.Name)
	}
	if len(res.Excluded) != 1 || res.Excluded[0].Reason != ReasonCategory {
		t.Fatalf("expected category exclusion, got %+v", res.Excluded)
	}
}

func TestSelectHigherRevisionWins(t *testing.T) {
	group := groupOf(t,
		game("Cool Game (USA)", "a1"),
		game("Cool Game (USA) (Rev 1)", "a2"),
		game("Cool Game (USA) (Rev 2)", "a3"),
	)

	res := Select(group, profileByName(t, "McLean"))
	if res.Winner == nil || res.Winner.Game.Name != "Cool Game (USA) (Rev 2)" {
		t.Fatalf("expected Rev 2 winner, got %+v", res.Winner)
	}
}

func TestSelectIdentityTieBreak(t *testing.T) {
	// Two World entries with no revision difference: only the identity
	// tie-break separates them.
	group := groupOf(t,
		game("Cool Game (World)", "cccc"),
		game("Cool Game (World) [f]", "aaaa"),
	)

	res := Select(group, profileByName(t, "Hearto"))
	if res.Winner == nil || res.Winner.Game.Identity() != "aaaa" {
		t.Fatalf("expected smallest identity to win, got %+v", res.Winner)
	}
}

func TestSelectLanguageFilterSkippedWhenAbsent(t *testing.T) {
	// McLean prefers English but the group has none: the filter is skipped
	// rather than excluding everything.
	group := groupOf(t, game("Cool Game (Japan)", "a1"))

	res := Select(group, profileByName(t, "McLean"))
	if res.Winner == nil || res.Winner.Game.Name != "Cool Game (Japan)" {
		t.Fatalf("expected Japan winner, got %+v", res.Winner)
	}
}

func TestSelectAtMostOneWinner(t *testing.T) {
	group := groupOf(t,
		game("Cool Game (USA)", "a1"),
		game("Cool Game (Europe)", "a2"),
		game("Cool Game (Japan)", "a3"),
		game("Cool Game (World)", "a4"),
		game("Cool Game (USA) (Demo)", "a5"),
		game("Cool Game (USA) (Unl)", "a6"),
	)

	for _, p := range profile.Builtins() {
		res := Select(group, p)
		winners := 0
		if res.Winner != nil {
			winners++
		}
		if winners > 1 {
			t.Fatalf("profile %s produced more than one winner", p.Name)
		}
		if winners+len(res.Excluded) != len(group.Entries) {
			t.Fatalf("profile %s: %d entries unaccounted for", p.Name,
				len(group.Entries)-winners-len(res.Excluded))
		}
	}
}

func TestSelectDeterminism(t *testing.T) {
	group := groupOf(t,
		game("Cool Game (USA)", "a1"),
		game("Cool Game (Europe)", "a2"),
		game("Cool Game (Japan) (Rev 1)", "a3"),
	)
	p := profileByName(t, "PropeR")

	first := Select(group, p)
	second := Select(group, p)

	if first.Winner != second.Winner {
		t.Fatal("winner differs between runs")
	}
	if !reflect.DeepEqual(first.Excluded, second.Excluded) {
		t.Fatal("exclusions differ between runs")
	}
}
