// Package clonelist loads clone list documents: JSON files mapping variant
// titles that exact normalization cannot unify (retitled regional releases,
// compilations) into one title group. Clone lists are optional data; when
// none are present, grouping falls back to exact normalized-title matching.
package clonelist

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"

	"github.com/fresh1g1r/fresh1g1r/pkg/gametags"
)

// List holds the merged override table from one or more clone list files.
type List struct {
	overrides map[string]string // normalized variant title -> group key
}

// Overrides returns the normalized-title -> group-key table, nil-safe.
func (l *List) Overrides() map[string]string {
	if l == nil {
		return nil
	}
	return l.overrides
}

// Len reports the number of variant overrides loaded.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.overrides)
}

// Parse reads one clone list document. Expected shape:
//
//	{"variants": [
//	  {"group": "Canonical Title",
//	   "titles": [{"searchTerm": "Variant Title (USA)"}, ...]}
//	]}
//
// Search terms are normalized the same way catalog titles are, so a clone
// list entry matches regardless of the tags it was written with.
func Parse(data []byte) (*List, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("clone list is not valid JSON")
	}

	l := &List{overrides: make(map[string]string)}
	variants := gjson.GetBytes(data, "variants")
	if !variants.IsArray() {
		return nil, fmt.Errorf("clone list has no variants array")
	}

	variants.ForEach(func(_, variant gjson.Result) bool {
		group := variant.Get("group").String()
		if group == "" {
			return true
		}
		variant.Get("titles").ForEach(func(_, title gjson.Result) bool {
			term := title.Get("searchTerm").String()
			if term == "" {
				term = title.String()
			}
			if term != "" {
				l.overrides[gametags.NormalizeTitle(term)] = group
			}
			return true
		})
		return true
	})

	return l, nil
}

// LoadDir parses every *.json clone list under dir, merging overrides.
// A missing directory yields an empty list.
func LoadDir(dir string) (*List, error) {
	merged := &List{overrides: make(map[string]string)}

	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, err
	}
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		l, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), err)
		}
		for k, v := range l.overrides {
			merged.overrides[k] = v
		}
	}
	return merged, nil
}

// Fetch downloads and parses a clone list over HTTP.
func Fetch(ctx context.Context, url string) (*List, error) {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.New(io.Discard, "", 0)
	retryClient.RetryMax = 3

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := retryClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetching clone list: unexpected status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}
