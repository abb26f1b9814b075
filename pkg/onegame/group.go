// Package onegame implements 1G1R selection: clustering catalog entries into
// title groups and picking exactly one preferred variant per group under a
// filter profile.
package onegame

import (
	"fmt"

	"github.com/fresh1g1r/fresh1g1r/pkg/dat"
	"github.com/fresh1g1r/fresh1g1r/pkg/gametags"
)

// Entry pairs a parsed game record with its tag classification. Entries
// reference the catalog's games, they never copy or mutate them.
type Entry struct {
	Game *dat.Game
	Info gametags.Info
	// Index is the game's position in the input catalog, used to keep
	// output ordering stable.
	Index int
}

// TitleGroup is the set of entries believed to be the same game across
// regions and revisions. Membership is decided once per run.
type TitleGroup struct {
	Key     string
	Entries []*Entry
}

// Diagnostic records a non-fatal grouping problem (duplicate identity seen
// under two keys, or an exact duplicate record). The offending entry is
// skipped; processing continues.
type Diagnostic struct {
	Title    string
	Identity string
	Detail   string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s [%s]: %s", d.Title, d.Identity, d.Detail)
}

// GroupEntries clusters the catalog's games by normalized canonical title.
// Grouping is exact-string only: titles that normalize differently stay in
// different groups, no fuzzy matching. overrides maps a normalized title to
// a replacement group key (clone list data) and may be nil.
//
// Groups are returned in order of first appearance, with entries in input
// order, so output assembly stays stable.
func GroupEntries(games []dat.Game, overrides map[string]string) ([]*TitleGroup, []Diagnostic) {
	var (
		groups     []*TitleGroup
		diags      []Diagnostic
		byKey      = make(map[string]*TitleGroup)
		identities = make(map[string]string) // identity -> group key
	)

	for i := range games {
		g := &games[i]
		info := gametags.Classify(g.Name, g.Category)
		key := info.NormTitle
		if replacement, ok := overrides[key]; ok {
			key = replacement
		}

		identity := g.Identity()
		if prevKey, seen := identities[identity]; seen {
			detail := "duplicate record"
			if prevKey != key {
				detail = fmt.Sprintf("identity already grouped under %q", prevKey)
			}
			diags = append(diags, Diagnostic{Title: g.Name, Identity: identity, Detail: detail})
			continue
		}
		identities[identity] = key

		group, ok := byKey[key]
		if !ok {
			group = &TitleGroup{Key: key}
			byKey[key] = group
			groups = append(groups, group)
		}
		group.Entries = append(group.Entries, &Entry{Game: g, Info: info, Index: i})
	}

	return groups, diags
}
