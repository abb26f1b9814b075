// Package redump fetches disc-based DAT files from redump.org. The downloads
// page links one datfile per system; each is served either bare or zipped,
// with the canonical filename in the Content-Disposition header.
package redump

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fresh1g1r/fresh1g1r/internal/utils"
	"github.com/fresh1g1r/fresh1g1r/pkg/catalogs"
	"github.com/fresh1g1r/fresh1g1r/pkg/fetch"
)

const defaultBaseURL = "http://redump.org"

type Fetcher struct {
	BaseURL string
	// Delay is the pause between real downloads, to stay polite to the
	// server. Skipped files don't pause.
	Delay  time.Duration
	client *retryablehttp.Client
}

func New(baseURL, proxy string) (*Fetcher, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client, err := fetch.NewClient(proxy)
	if err != nil {
		return nil, err
	}
	return &Fetcher{BaseURL: baseURL, Delay: 2 * time.Second, client: client}, nil
}

func (f *Fetcher) Name() string { return catalogs.Redump }

// ListAvailable scrapes the downloads page for datfile links.
func (f *Fetcher) ListAvailable(ctx context.Context) ([]string, error) {
	res, err := fetch.Get(ctx, f.client, f.BaseURL+"/downloads/")
	if err != nil {
		return nil, fmt.Errorf("fetching downloads page: %w", err)
	}
	if res.StatusCode != 200 {
		return nil, fmt.Errorf("downloads page returned status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return nil, fmt.Errorf("parsing downloads page: %w", err)
	}

	var names []string
	seen := make(map[string]bool)
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if !strings.HasPrefix(href, "/datfile/") {
			return
		}
		name := strings.TrimPrefix(href, "/datfile/")
		if name != "" && !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	})
	return names, nil
}

// FetchAll downloads every available datfile into destDir. Files whose exact
// name is already on disk are skipped; when a system's DAT is replaced by a
// newer export, older files for the same system are removed.
func (f *Fetcher) FetchAll(ctx context.Context, destDir string) (*catalogs.Result, error) {
	names, err := f.ListAvailable(ctx)
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("no datfile links on downloads page")
	}
	if err := utils.EnsureDir(destDir); err != nil {
		return nil, err
	}

	result := &catalogs.Result{}
	for i, name := range names {
		path, skipped, err := f.download(ctx, name, destDir)
		if err != nil {
			utils.Log.Warnf("redump: %s: %v", name, err)
			continue
		}
		if skipped {
			result.Skipped = append(result.Skipped, path)
			continue
		}
		result.Downloaded = append(result.Downloaded, path)
		result.Removed += removeSuperseded(path, destDir)

		if i < len(names)-1 && f.Delay > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(f.Delay):
			}
		}
	}
	return result, nil
}

// download fetches one datfile, unzipping when needed. Returns the on-disk
// path and whether an existing file made the download unnecessary.
func (f *Fetcher) download(ctx context.Context, name, destDir string) (string, bool, error) {
	datURL := f.BaseURL + "/datfile/" + name

	// A HEAD first: when the server suggests a bare .dat name that's already
	// on disk, the body never needs to move.
	head, err := fetch.Head(ctx, f.client, datURL)
	if err == nil && head.Filename != "" && !strings.HasSuffix(head.Filename, ".zip") {
		datName := ensureDATExt(head.Filename)
		path := filepath.Join(destDir, utils.SanitizeFilename(datName))
		if _, err := os.Stat(path); err == nil {
			return path, true, nil
		}
	}

	res, err := fetch.Get(ctx, f.client, datURL)
	if err != nil {
		return "", false, err
	}
	if res.StatusCode != 200 {
		return "", false, fmt.Errorf("status %d", res.StatusCode)
	}

	filename := res.Filename
	if filename == "" {
		filename = name
	}

	if strings.HasSuffix(filename, ".zip") {
		dats, err := fetch.ExtractDATs(res.Body)
		if err != nil {
			return "", false, err
		}
		names := make([]string, 0, len(dats))
		for datName := range dats {
			names = append(names, datName)
		}
		sort.Strings(names)

		// Each member stands on its own: existing ones stay, missing ones
		// are written. Only a zip with nothing new counts as skipped.
		var path string
		wrote := false
		for _, datName := range names {
			p := filepath.Join(destDir, utils.SanitizeFilename(datName))
			if _, err := os.Stat(p); err == nil {
				if path == "" {
					path = p
				}
				continue
			}
			if err := os.WriteFile(p, dats[datName], 0o644); err != nil {
				return "", false, err
			}
			path = p
			wrote = true
		}
		return path, !wrote, nil
	}

	path := filepath.Join(destDir, utils.SanitizeFilename(ensureDATExt(filename)))
	if _, err := os.Stat(path); err == nil {
		return path, true, nil
	}
	if err := os.WriteFile(path, res.Body, 0o644); err != nil {
		return "", false, err
	}
	return path, false, nil
}

// removeSuperseded deletes older DATs for the same system as the freshly
// written file. Redump filenames embed the export date, so a new export
// never overwrites the old one by name.
func removeSuperseded(newPath, destDir string) int {
	newSystem := catalogs.SystemName(stem(newPath), catalogs.Redump)

	matches, err := filepath.Glob(filepath.Join(destDir, "*.dat"))
	if err != nil {
		return 0
	}
	removed := 0
	for _, old := range matches {
		if old == newPath {
			continue
		}
		if catalogs.SystemName(stem(old), catalogs.Redump) == newSystem {
			if err := os.Remove(old); err == nil {
				removed++
			}
		}
	}
	return removed
}

func ensureDATExt(name string) string {
	if strings.HasSuffix(name, ".dat") {
		return name
	}
	return name + ".dat"
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
