// Package catalogs defines the interface to the upstream DAT providers and
// the filename conventions shared between them.
package catalogs

import (
	"context"
	"regexp"
	"strings"
)

// Collection names as used in directory layouts and the state DB.
const (
	Redump  = "redump"
	NoIntro = "no-intro"
)

// Result summarizes one fetch pass over a collection.
type Result struct {
	// Downloaded holds paths of DAT files written this pass.
	Downloaded []string
	// Skipped holds paths that were already present and left untouched.
	Skipped []string
	// Removed counts superseded files deleted during the pass.
	Removed int
}

// Fetcher downloads a collection's current DAT files into a directory,
// abstracting away how each provider serves them (scraped file list vs.
// one zipped daily pack).
type Fetcher interface {
	Name() string
	FetchAll(ctx context.Context, destDir string) (*Result, error)
}

var (
	outputSuffixRe  = regexp.MustCompile(` \(Fresh1G1R - [^)]+\)$`)
	noIntroDateRe   = regexp.MustCompile(`\(\d{8}-\d{6}\)`)
	redumpDatfileRe = regexp.MustCompile(` - Datfile \(\d+\)`)
	redumpDateRe    = regexp.MustCompile(`\(\d{4}-\d{2}-\d{2} \d{2}[-:]\d{2}[-:]\d{2}\)`)
	trailingMetaRe  = regexp.MustCompile(` \(Retool.*$`)
)

// SystemName extracts the bare system name from a DAT filename stem,
// stripping the collection's date stamp and any processing suffixes.
//
//	"Acorn - Archimedes (20231029-220453)"                  -> "Acorn - Archimedes"
//	"Sony - PlayStation (2025-10-23 18-11-28) - Datfile (77)" -> "Sony - PlayStation"
func SystemName(stem, collection string) string {
	stem = outputSuffixRe.ReplaceAllString(stem, "")

	if collection == NoIntro {
		if loc := noIntroDateRe.FindStringIndex(stem); loc != nil {
			return strings.TrimSpace(stem[:loc[0]])
		}
		return strings.TrimSpace(stem)
	}

	stem = redumpDatfileRe.ReplaceAllString(stem, "")
	if loc := redumpDateRe.FindStringIndex(stem); loc != nil {
		return strings.TrimSpace(stem[:loc[0]])
	}
	return strings.TrimSpace(trailingMetaRe.ReplaceAllString(stem, ""))
}
