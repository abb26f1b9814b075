// Package report renders the per-catalog diagnostic report: per title group
// the winner and every exclusion with its reason. Reports are the audit
// trail for filter behavior; nothing downstream consumes them.
package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"

	"github.com/fresh1g1r/fresh1g1r/pkg/onegame"
)

// Meta identifies the unit a report belongs to.
type Meta struct {
	Profile    string
	Collection string
	System     string
	InputFile  string
	Date       time.Time
}

// Filename builds the dated report filename for a system.
func Filename(system string, t time.Time) string {
	return fmt.Sprintf("%s (%s).txt", system, t.Format("2006-01-02"))
}

// Write renders one report. Groups appear in the order given; within a
// group the winner leads and exclusions follow in input order.
func Write(w io.Writer, meta Meta, results []onegame.SelectionResult, diags []onegame.Diagnostic, droppedRecords int) error {
	var winners, excluded int
	for _, r := range results {
		if r.Winner != nil {
			winners++
		}
		excluded += len(r.Excluded)
	}

	fmt.Fprintf(w, "1G1R selection report\n")
	fmt.Fprintf(w, "Profile:    %s\n", meta.Profile)
	fmt.Fprintf(w, "Collection: %s\n", meta.Collection)
	fmt.Fprintf(w, "System:     %s\n", meta.System)
	fmt.Fprintf(w, "Input:      %s\n", meta.InputFile)
	fmt.Fprintf(w, "Date:       %s\n\n", meta.Date.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Groups: %d   Winners: %d   Excluded: %d", len(results), winners, excluded)
	if droppedRecords > 0 {
		fmt.Fprintf(w, "   Malformed records dropped: %d", droppedRecords)
	}
	fmt.Fprintf(w, "\n\n")

	for _, r := range results {
		fmt.Fprintf(w, "%s\n", r.Group.Key)
		if r.Winner != nil {
			fmt.Fprintf(w, "  + %s\n", r.Winner.Game.Name)
		} else {
			fmt.Fprintf(w, "  (no winner)\n")
		}
		for _, e := range r.Excluded {
			fmt.Fprintf(w, "  - %s  [%s]\n", e.Entry.Game.Name, e.Reason)
		}
	}

	if len(diags) > 0 {
		fmt.Fprintf(w, "\nGrouping diagnostics:\n")
		for _, d := range diags {
			fmt.Fprintf(w, "  ! %s\n", d)
		}
	}

	_, err := fmt.Fprintln(w)
	return err
}

// WriteFile renders the report into dir under the dated filename.
func WriteFile(dir string, meta Meta, results []onegame.SelectionResult, diags []onegame.Diagnostic, droppedRecords int) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, Filename(meta.System, meta.Date))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := Write(f, meta, results, diags, droppedRecords); err != nil {
		f.Close()
		return "", err
	}
	return path, f.Close()
}

var reportDateRe = regexp.MustCompile(` \(\d{4}-\d{2}-\d{2}\)$`)

// Prune keeps the most recent `keep` reports per system in dir and deletes
// the rest. Returns the number of files removed.
func Prune(dir string, keep int) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil || len(paths) == 0 {
		return 0, err
	}

	bySystem := make(map[string][]string)
	for _, path := range paths {
		base := filepath.Base(path)
		stem := base[:len(base)-len(filepath.Ext(base))]
		system := reportDateRe.ReplaceAllString(stem, "")
		bySystem[system] = append(bySystem[system], path)
	}

	removed := 0
	for _, files := range bySystem {
		if len(files) <= keep {
			continue
		}
		sort.Slice(files, func(i, j int) bool {
			fi, erri := os.Stat(files[i])
			fj, errj := os.Stat(files[j])
			if erri != nil || errj != nil {
				return files[i] > files[j]
			}
			return fi.ModTime().After(fj.ModTime())
		})
		for _, path := range files[keep:] {
			if err := os.Remove(path); err == nil {
				removed++
			}
		}
	}
	return removed, nil
}
