// Package pipeline runs the 1G1R filter across every (profile × collection)
// pair: parse each downloaded DAT, group its titles, select winners, write
// the filtered DAT and its report, and record the outcome.
//
// Pairs run concurrently and share nothing mutable: catalogs are parsed
// fresh per unit and title groups are read-only after construction, so the
// only synchronization is the final join plus a mutex around the collected
// results. A failed unit never stops the others.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fresh1g1r/fresh1g1r/pkg/catalogs"
	"github.com/fresh1g1r/fresh1g1r/pkg/dat"
	"github.com/fresh1g1r/fresh1g1r/pkg/onegame"
	"github.com/fresh1g1r/fresh1g1r/pkg/profile"
	"github.com/fresh1g1r/fresh1g1r/pkg/report"
	"github.com/fresh1g1r/fresh1g1r/pkg/storage"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// nopLogger silently discards all messages.
type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Config holds everything Run needs.
type Config struct {
	Profiles    []*profile.Profile
	Collections []string

	// VirginDir holds raw downloads (VirginDir/<collection>/*.dat),
	// OutputDir the filtered DATs (OutputDir/<profile>/<collection>/),
	// ReportDir the diagnostic reports, same layout.
	VirginDir string
	OutputDir string
	ReportDir string

	// DB is optional; without it the already-processed check is skipped.
	DB *storage.DB
	// Overrides is clone list data for the group resolver, may be nil.
	Overrides map[string]string

	Concurrency int // files in flight per pair; defaults to 4 if <= 0
	Reprocess   bool
	ReportKeep  int // reports kept per system; defaults to 7 if <= 0
	Log         Logger
}

// Unit statuses beyond the storage ones.
const statusSkipped = "skipped"

// UnitResult is the outcome of one (profile, collection, input DAT) unit.
type UnitResult struct {
	Profile    string
	Collection string
	System     string
	Status     string
	OutputPath string
	Groups     int
	Winners    int
	Excluded   int
	Err        error
}

// Result aggregates a whole pipeline pass.
type Result struct {
	Units []UnitResult
	// Errors holds per-unit failures; they are already reflected in Units.
	Errors []error
}

// Counts tallies unit statuses.
func (r *Result) Counts() map[string]int {
	counts := make(map[string]int)
	for _, u := range r.Units {
		counts[u.Status]++
	}
	return counts
}

// Run processes all pairs. Only setup problems (unreadable input dir) fail a
// pair; per-file failures are collected and processing continues.
func Run(ctx context.Context, cfg Config) (*Result, error) {
	log := cfg.Log
	if log == nil {
		log = nopLogger{}
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.ReportKeep <= 0 {
		cfg.ReportKeep = 7
	}

	result := &Result{}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, prof := range cfg.Profiles {
		for _, collection := range cfg.Collections {
			prof, collection := prof, collection
			g.Go(func() error {
				units := runPair(gctx, cfg, prof, collection, log)
				mu.Lock()
				defer mu.Unlock()
				result.Units = append(result.Units, units...)
				for _, u := range units {
					if u.Err != nil {
						result.Errors = append(result.Errors, u.Err)
					}
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		return result, err
	}

	sort.Slice(result.Units, func(i, j int) bool {
		a, b := result.Units[i], result.Units[j]
		if a.Profile != b.Profile {
			return a.Profile < b.Profile
		}
		if a.Collection != b.Collection {
			return a.Collection < b.Collection
		}
		return a.System < b.System
	})
	return result, nil
}

// runPair processes every DAT of one collection under one profile with a
// bounded worker pool.
func runPair(ctx context.Context, cfg Config, prof *profile.Profile, collection string, log Logger) []UnitResult {
	inputDir := filepath.Join(cfg.VirginDir, collection)
	datFiles, err := filepath.Glob(filepath.Join(inputDir, "*.dat"))
	if err != nil || len(datFiles) == 0 {
		log.Debugf("No DAT files for %s/%s, skipping pair", prof.Name, collection)
		return nil
	}
	sort.Strings(datFiles)

	log.Infof("Processing %d DAT file(s) for %s/%s", len(datFiles), prof.Name, collection)

	outputDir := filepath.Join(cfg.OutputDir, prof.Name, collection)
	reportDir := filepath.Join(cfg.ReportDir, prof.Name, collection)

	fileChan := make(chan string, len(datFiles))
	var mu sync.Mutex
	units := make([]UnitResult, 0, len(datFiles))

	var wg sync.WaitGroup
	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range fileChan {
				unit := processOne(ctx, cfg, prof, collection, path, outputDir, reportDir, log)
				mu.Lock()
				units = append(units, unit)
				mu.Unlock()
			}
		}()
	}
	for _, path := range datFiles {
		fileChan <- path
	}
	close(fileChan)
	wg.Wait()

	// Sweep outputs for systems no longer present in the input set.
	preserve := make(map[string]bool)
	for _, u := range units {
		if u.OutputPath != "" {
			preserve[filepath.Base(u.OutputPath)] = true
		}
	}
	if removed := cleanupOutputs(outputDir, preserve); removed > 0 {
		log.Infof("Removed %d stale output DAT(s) from %s/%s", removed, prof.Name, collection)
	}
	if removed, err := report.Prune(reportDir, cfg.ReportKeep); err == nil && removed > 0 {
		log.Infof("Pruned %d old report(s) from %s/%s", removed, prof.Name, collection)
	}

	return units
}

// processOne runs the filter for a single input DAT.
func processOne(ctx context.Context, cfg Config, prof *profile.Profile, collection, inputPath, outputDir, reportDir string, log Logger) UnitResult {
	base := filepath.Base(inputPath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	system := catalogs.SystemName(stem, collection)

	unit := UnitResult{Profile: prof.Name, Collection: collection, System: system}

	// Same input already filtered with this profile: nothing to do.
	if !cfg.Reprocess && cfg.DB != nil {
		prev, err := cfg.DB.LookupRun(ctx, prof.Name, collection, system)
		if err != nil {
			log.Warnf("State lookup failed for %s/%s/%s: %v", prof.Name, collection, system, err)
		} else if prev != nil && prev.InputFile == base && outputStillPresent(prev) {
			log.Debugf("Skipping %s (already processed as %s)", base, prev.Status)
			unit.Status = statusSkipped
			unit.OutputPath = prev.OutputPath
			return unit
		}
	}

	fail := func(err error) UnitResult {
		unit.Status = storage.StatusFailed
		unit.Err = fmt.Errorf("%s/%s/%s: %w", prof.Name, collection, system, err)
		log.Errorf("Failed: %v", unit.Err)
		recordUnit(ctx, cfg, unit, base, err.Error(), log)
		return unit
	}

	f, err := os.Open(inputPath)
	if err != nil {
		return fail(err)
	}
	parsed, err := dat.Parse(f)
	f.Close()
	if err != nil {
		if errors.Is(err, dat.ErrNoValidGames) {
			log.Warnf("No valid titles in %s", base)
			unit.Status = storage.StatusNoGames
			recordUnit(ctx, cfg, unit, base, "", log)
			return unit
		}
		return fail(err)
	}
	if parsed.DroppedRecords > 0 {
		log.Warnf("%s: dropped %d malformed record(s)", base, parsed.DroppedRecords)
	}

	groups, diags := onegame.GroupEntries(parsed.Datafile.Games, cfg.Overrides)
	for _, d := range diags {
		log.Debugf("%s: grouping: %s", base, d)
	}

	results := make([]onegame.SelectionResult, 0, len(groups))
	var winners []dat.Game
	for _, group := range groups {
		res := onegame.Select(group, prof)
		results = append(results, res)
		if res.Winner != nil {
			winners = append(winners, *res.Winner.Game)
		}
		unit.Excluded += len(res.Excluded)
	}
	unit.Groups = len(groups)
	unit.Winners = len(winners)

	meta := report.Meta{
		Profile:    prof.Name,
		Collection: collection,
		System:     system,
		InputFile:  base,
		Date:       time.Now(),
	}
	if _, err := report.WriteFile(reportDir, meta, results, diags, parsed.DroppedRecords); err != nil {
		log.Warnf("Could not write report for %s: %v", base, err)
	}

	if len(winners) == 0 {
		// Valid outcome, but worth a warning: a profile that filters a whole
		// catalog away is usually misconfigured.
		log.Warnf("%s: no titles match profile %s, no DAT created", base, prof.Name)
		unit.Status = storage.StatusNotRequired
		recordUnit(ctx, cfg, unit, base, "", log)
		return unit
	}

	outPath := filepath.Join(outputDir, fmt.Sprintf("%s (Fresh1G1R - %s).dat", system, prof.Name))
	if err := writeFiltered(outPath, parsed.Datafile.Header, winners); err != nil {
		return fail(err)
	}

	log.Infof("%s/%s: %s: %d of %d groups kept", prof.Name, collection, system, len(winners), len(groups))
	unit.Status = storage.StatusSuccess
	unit.OutputPath = outPath
	recordUnit(ctx, cfg, unit, base, "", log)
	return unit
}

func writeFiltered(path string, header dat.Header, winners []dat.Game) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	out := &dat.Datafile{Header: header, Games: winners}
	if err := dat.Write(f, out); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func recordUnit(ctx context.Context, cfg Config, unit UnitResult, inputFile, errMsg string, log Logger) {
	if cfg.DB == nil {
		return
	}
	err := cfg.DB.RecordRun(ctx, storage.Run{
		Profile:    unit.Profile,
		Collection: unit.Collection,
		System:     unit.System,
		InputFile:  inputFile,
		Status:     unit.Status,
		Groups:     unit.Groups,
		Winners:    unit.Winners,
		Excluded:   unit.Excluded,
		OutputPath: unit.OutputPath,
		Error:      errMsg,
	})
	if err != nil {
		log.Warnf("Could not record run for %s/%s/%s: %v", unit.Profile, unit.Collection, unit.System, err)
	}
}

func outputStillPresent(prev *storage.Run) bool {
	if prev.Status != storage.StatusSuccess {
		// Nothing was written for not-required/no-games runs; the recorded
		// outcome alone is enough to skip.
		return prev.Status == storage.StatusNotRequired || prev.Status == storage.StatusNoGames
	}
	_, err := os.Stat(prev.OutputPath)
	return err == nil
}

// cleanupOutputs removes output DATs not in the preserve set.
func cleanupOutputs(outputDir string, preserve map[string]bool) int {
	paths, err := filepath.Glob(filepath.Join(outputDir, "*.dat"))
	if err != nil {
		return 0
	}
	removed := 0
	for _, path := range paths {
		if preserve[filepath.Base(path)] {
			continue
		}
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed
}
