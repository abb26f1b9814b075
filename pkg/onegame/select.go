package onegame

import (
	"github.com/fresh1g1r/fresh1g1r/pkg/gametags"
	"github.com/fresh1g1r/fresh1g1r/pkg/profile"
)

// ExclusionReason names the elimination step that removed an entry.
type ExclusionReason string

const (
	ReasonCategory  ExclusionReason = "category-filtered"
	ReasonLanguage  ExclusionReason = "language-filtered"
	ReasonLicensing ExclusionReason = "licensing-filtered"
	ReasonRegion    ExclusionReason = "region-priority"
	ReasonRevision  ExclusionReason = "older-revision"
	ReasonIdentity  ExclusionReason = "identity-tie-break"
)

// Exclusion is one non-winning entry and why it lost.
type Exclusion struct {
	Entry  *Entry
	Reason ExclusionReason
}

// SelectionResult is the outcome for one (group, profile) pair: at most one
// winner plus every excluded entry with its reason. Created fresh per pair,
// never mutated afterwards.
type SelectionResult struct {
	Group    *TitleGroup
	Winner   *Entry
	Excluded []Exclusion
}

// Select picks the preferred variant of a title group under a profile.
// The elimination order is fixed: category filter, language preference,
// licensing preference, region priority, revision, identity. Identical input
// always yields the identical result; there is no randomness and no clock.
func Select(group *TitleGroup, p *profile.Profile) SelectionResult {
	res := SelectionResult{Group: group}

	exclude := func(entries []*Entry, reason ExclusionReason) {
		for _, e := range entries {
			res.Excluded = append(res.Excluded, Exclusion{Entry: e, Reason: reason})
		}
	}

	// Step 1: category filter. A group where nothing passes has no winner;
	// that is a valid outcome, not an error.
	remaining, dropped := partition(group.Entries, func(e *Entry) bool {
		return p.Includes(e.Info)
	})
	exclude(dropped, ReasonCategory)
	if len(remaining) == 0 {
		return res
	}

	// Step 2: keep entries supporting the most-preferred language actually
	// present in the group. A profile with no language list skips this, as
	// does a group where no preferred language appears at all.
	if lang := bestPresentLanguage(remaining, p.Languages); lang != "" {
		remaining, dropped = partition(remaining, func(e *Entry) bool {
			return hasLanguage(e.Info, lang)
		})
		exclude(dropped, ReasonLanguage)
	}

	// Step 3: licensed beats unlicensed, but only when both exist.
	if p.PreferLicensed && mixedLicensing(remaining) {
		remaining, dropped = partition(remaining, func(e *Entry) bool {
			return e.Info.Licensing == gametags.Licensed
		})
		exclude(dropped, ReasonLicensing)
	}

	// Step 4: region priority, then highest revision, then the smallest
	// identity as the final deterministic tie-break.
	if len(remaining) > 1 {
		best := gametags.RegionKey(remaining[0].Info.Regions)
		for _, e := range remaining[1:] {
			if key := gametags.RegionKey(e.Info.Regions); key < best {
				best = key
			}
		}
		remaining, dropped = partition(remaining, func(e *Entry) bool {
			return gametags.RegionKey(e.Info.Regions) == best
		})
		exclude(dropped, ReasonRegion)
	}
	if len(remaining) > 1 {
		top := remaining[0].Info.Revision
		for _, e := range remaining[1:] {
			if gametags.CompareRevision(e.Info.Revision, top) > 0 {
				top = e.Info.Revision
			}
		}
		remaining, dropped = partition(remaining, func(e *Entry) bool {
			return gametags.CompareRevision(e.Info.Revision, top) == 0
		})
		exclude(dropped, ReasonRevision)
	}
	if len(remaining) > 1 {
		winner := remaining[0]
		for _, e := range remaining[1:] {
			if e.Game.Identity() < winner.Game.Identity() {
				winner = e
			}
		}
		remaining, dropped = partition(remaining, func(e *Entry) bool { return e == winner })
		exclude(dropped, ReasonIdentity)
	}

	res.Winner = remaining[0]
	return res
}

// bestPresentLanguage returns the first profile language supported by any
// entry, or "" when the profile has no preference or none is present.
func bestPresentLanguage(entries []*Entry, preferred []string) string {
	for _, lang := range preferred {
		for _, e := range entries {
			if hasLanguage(e.Info, lang) {
				return lang
			}
		}
	}
	return ""
}

func hasLanguage(info gametags.Info, lang string) bool {
	for _, l := range info.Languages {
		if l == lang {
			return true
		}
	}
	return false
}

func mixedLicensing(entries []*Entry) bool {
	var licensed, other bool
	for _, e := range entries {
		if e.Info.Licensing == gametags.Licensed {
			licensed = true
		} else {
			other = true
		}
	}
	return licensed && other
}

func partition(entries []*Entry, keep func(*Entry) bool) (kept, dropped []*Entry) {
	for _, e := range entries {
		if keep(e) {
			kept = append(kept, e)
		} else {
			dropped = append(dropped, e)
		}
	}
	return kept, dropped
}
