// Package gametags classifies DAT game titles by the parenthesized tags
// conventionally embedded in them: "(USA)", "(En,Fr)", "(Rev 1)", "(Unl)",
// "(Proto)" and friends. Classification is a pure function of the title
// string plus the DAT category field.
package gametags

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

type Category int

const (
	CategoryGame Category = iota
	CategoryAddOn
	CategoryEducational
	CategoryFixed
	CategoryBonusDisc
)

func (c Category) String() string {
	switch c {
	case CategoryAddOn:
		return "add-on"
	case CategoryEducational:
		return "educational"
	case CategoryFixed:
		return "fixed"
	case CategoryBonusDisc:
		return "bonus-disc"
	default:
		return "game"
	}
}

type Licensing int

const (
	Licensed Licensing = iota
	Unlicensed
	Homebrew
)

func (l Licensing) String() string {
	switch l {
	case Unlicensed:
		return "unlicensed"
	case Homebrew:
		return "homebrew"
	default:
		return "licensed"
	}
}

type Production int

const (
	Retail Production = iota
	Demo
	Proto
	Beta
	Alpha
	Promotional
)

func (p Production) String() string {
	switch p {
	case Demo:
		return "demo"
	case Proto:
		return "proto"
	case Beta:
		return "beta"
	case Alpha:
		return "alpha"
	case Promotional:
		return "promotional"
	default:
		return "retail"
	}
}

// Info is the full classification of one title string.
type Info struct {
	// NormTitle is the canonical title with all recognized tags stripped.
	// Unrecognized parenthesized groups (e.g. "(Disc 1)") are kept, so discs
	// of a set stay distinct.
	NormTitle  string
	Regions    []string
	Languages  []string
	Revision   string
	Category   Category
	Licensing  Licensing
	Production Production
}

// regionOrder is the fixed, profile-independent region priority used as the
// 1G1R tie-break. Lower index wins. Regions not listed rank after all listed
// ones, alphabetically.
var regionOrder = []string{"World", "USA", "Europe", "Japan"}

var knownRegions = map[string]bool{
	"World": true, "USA": true, "Europe": true, "Japan": true,
	"Asia": true, "Australia": true, "Austria": true, "Belgium": true,
	"Brazil": true, "Canada": true, "China": true, "Croatia": true,
	"Denmark": true, "Finland": true, "France": true, "Germany": true,
	"Greece": true, "Hong Kong": true, "India": true, "Ireland": true,
	"Israel": true, "Italy": true, "Korea": true, "Latin America": true,
	"Mexico": true, "Netherlands": true, "New Zealand": true, "Norway": true,
	"Poland": true, "Portugal": true, "Russia": true, "Scandinavia": true,
	"South Africa": true, "Spain": true, "Sweden": true, "Switzerland": true,
	"Taiwan": true, "Thailand": true, "Turkey": true, "UK": true,
	"Ukraine": true, "United Arab Emirates": true, "Unknown": true,
}

var knownLanguages = map[string]bool{
	"En": true, "Ja": true, "Fr": true, "De": true, "Es": true, "It": true,
	"Nl": true, "Pt": true, "Sv": true, "No": true, "Da": true, "Fi": true,
	"Zh": true, "Ko": true, "Ru": true, "Pl": true, "Cs": true, "Hu": true,
	"El": true, "Tr": true, "Ar": true, "He": true, "Ca": true, "Hr": true,
	"Th": true, "Uk": true, "Ro": true, "Bg": true, "Sk": true, "Sl": true,
}

// regionLanguage maps a region to the language it implies when a title
// carries no explicit language tag.
var regionLanguage = map[string]string{
	"World": "En", "USA": "En", "Europe": "En", "UK": "En", "Canada": "En",
	"Australia": "En", "New Zealand": "En", "Ireland": "En", "India": "En",
	"Japan": "Ja", "France": "Fr", "Germany": "De", "Austria": "De",
	"Spain": "Es", "Mexico": "Es", "Latin America": "Es", "Italy": "It",
	"Brazil": "Pt", "Portugal": "Pt", "Korea": "Ko", "China": "Zh",
	"Taiwan": "Zh", "Hong Kong": "Zh", "Netherlands": "Nl", "Russia": "Ru",
	"Poland": "Pl", "Sweden": "Sv", "Norway": "No", "Denmark": "Da",
	"Finland": "Fi", "Greece": "El", "Turkey": "Tr", "Israel": "He",
	"Ukraine": "Uk", "Croatia": "Hr", "Thailand": "Th",
}

var (
	parenRe    = regexp.MustCompile(`\(([^)]*)\)`)
	bracketRe  = regexp.MustCompile(`\[([^\]]*)\]`)
	// The bare "v" form needs a digit, otherwise any word starting with v
	// ("Versus") would read as a revision.
	revisionRe = regexp.MustCompile(`^(?i)(?:(?:Rev|Version)[ .]?([0-9A-Za-z][0-9A-Za-z.\-]*)|v[ .]?(\d[0-9A-Za-z.\-]*))$`)
	protoRe    = regexp.MustCompile(`^(?i)(Proto|Beta|Alpha|Demo|Sample|Promo)(?:\s+\d+)?$`)
	spacesRe   = regexp.MustCompile(`\s{2,}`)
)

// Classify parses one title string. datCategory is the DAT's own <category>
// field ("Games", "Demos", "Bonus Discs", ...) and may be empty. Anything
// unrecognized falls back to a standard retail licensed game: the common
// case carries no tag at all.
func Classify(title, datCategory string) Info {
	info := Info{Category: CategoryGame, Licensing: Licensed, Production: Retail}

	applyDATCategory(&info, datCategory)

	stripped := title
	for _, m := range parenRe.FindAllStringSubmatch(title, -1) {
		group := m[1]
		recognized := classifyGroup(&info, group)
		if recognized {
			stripped = strings.Replace(stripped, m[0], "", 1)
		}
	}

	// Bracket tags: dump-status annotations. "[f]" marks a fixed dump.
	for _, m := range bracketRe.FindAllStringSubmatch(title, -1) {
		if strings.EqualFold(m[1], "f") || strings.EqualFold(m[1], "fixed") {
			info.Category = CategoryFixed
		}
		stripped = strings.Replace(stripped, m[0], "", 1)
	}

	if len(info.Languages) == 0 {
		for _, region := range info.Regions {
			if lang, ok := regionLanguage[region]; ok && !containsString(info.Languages, lang) {
				info.Languages = append(info.Languages, lang)
			}
		}
	}

	info.NormTitle = strings.TrimSpace(spacesRe.ReplaceAllString(stripped, " "))
	return info
}

// NormalizeTitle is Classify restricted to the canonical title key.
func NormalizeTitle(title string) string {
	return Classify(title, "").NormTitle
}

// classifyGroup inspects one parenthesized tag group and records what it
// found. Returns false when the group is not part of the known vocabulary,
// in which case it stays in the normalized title.
func classifyGroup(info *Info, group string) bool {
	parts := strings.Split(group, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	if allRegions(parts) {
		info.Regions = append(info.Regions, parts...)
		return true
	}
	if allLanguages(parts) {
		info.Languages = append(info.Languages, parts...)
		return true
	}
	if len(parts) != 1 {
		return false
	}
	tag := parts[0]

	if m := revisionRe.FindStringSubmatch(tag); m != nil {
		if m[1] != "" {
			info.Revision = m[1]
		} else {
			info.Revision = m[2]
		}
		return true
	}
	if m := protoRe.FindStringSubmatch(tag); m != nil {
		switch strings.ToLower(m[1]) {
		case "proto":
			info.Production = Proto
		case "beta":
			info.Production = Beta
		case "alpha":
			info.Production = Alpha
		case "demo", "sample":
			info.Production = Demo
		case "promo":
			info.Production = Promotional
		}
		return true
	}

	switch strings.ToLower(tag) {
	case "unl", "unlicensed", "pirate":
		info.Licensing = Unlicensed
		return true
	case "homebrew", "aftermarket":
		info.Licensing = Homebrew
		return true
	case "kiosk", "kiosk demo", "taikenban":
		info.Production = Demo
		return true
	}
	return false
}

func applyDATCategory(info *Info, datCategory string) {
	switch strings.ToLower(strings.TrimSpace(datCategory)) {
	case "", "games", "multimedia", "audio", "video", "applications":
		// category stays game
	case "add-ons", "addons":
		info.Category = CategoryAddOn
	case "educational":
		info.Category = CategoryEducational
	case "bonus discs", "coverdiscs":
		info.Category = CategoryBonusDisc
	case "demos":
		info.Production = Demo
	case "preproduction":
		info.Production = Proto
	}
}

// RegionRank returns the priority index of the best region carried by the
// title; lower is better. Unlisted regions rank after listed ones by name so
// ordering stays total and deterministic.
func RegionRank(regions []string) (int, string) {
	bestRank := len(regionOrder)
	bestName := ""
	for _, r := range regions {
		ranked := false
		for i, known := range regionOrder {
			if r == known {
				if i < bestRank {
					bestRank = i
					bestName = r
				}
				ranked = true
				break
			}
		}
		if !ranked && bestRank == len(regionOrder) {
			if bestName == "" || r < bestName {
				bestName = r
			}
		}
	}
	return bestRank, bestName
}

// RegionKey collapses RegionRank into a single sortable string: listed
// regions order by priority index, unlisted ones after them by name.
func RegionKey(regions []string) string {
	rank, name := RegionRank(regions)
	if rank < len(regionOrder) {
		return fmt.Sprintf("%d", rank)
	}
	return fmt.Sprintf("%d:%s", rank, name)
}

// CompareRevision orders revision tags: absence sorts lowest, then numeric
// dotted versions, then everything else lexicographically. Returns -1, 0, 1.
func CompareRevision(a, b string) int {
	if a == b {
		return 0
	}
	if a == "" {
		return -1
	}
	if b == "" {
		return 1
	}
	as, bs := strings.Split(a, "."), strings.Split(b, ".")
	for i := 0; i < len(as) && i < len(bs); i++ {
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			if an != bn {
				return sign(an - bn)
			}
			continue
		}
		if as[i] != bs[i] {
			if as[i] < bs[i] {
				return -1
			}
			return 1
		}
	}
	return sign(len(as) - len(bs))
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

func allRegions(parts []string) bool {
	for _, p := range parts {
		if !knownRegions[p] {
			return false
		}
	}
	return len(parts) > 0
}

func allLanguages(parts []string) bool {
	for _, p := range parts {
		if !knownLanguages[p] {
			return false
		}
	}
	return len(parts) > 0
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
