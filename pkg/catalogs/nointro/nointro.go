// Package nointro fetches cartridge DAT files from datomatic.no-intro.org.
// The site serves one zipped daily pack through a two-step form: a first
// POST queues the pack build, a second retrieves it. The form is parsed from
// the page rather than hardcoded, since Datomatic reshuffles field names.
package nointro

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/go-retryablehttp"

	"github.com/fresh1g1r/fresh1g1r/internal/utils"
	"github.com/fresh1g1r/fresh1g1r/pkg/catalogs"
	"github.com/fresh1g1r/fresh1g1r/pkg/fetch"
)

const (
	defaultBaseURL = "https://datomatic.no-intro.org"
	dailyPath      = "/index.php?page=download&op=daily"
)

// excludedSets are the daily-pack options left out of the request: we only
// want the standard cartridge DATs.
var excludedSets = []string{"Source Code", "Unofficial", "Non-Redump"}

type Fetcher struct {
	BaseURL string
	client  *retryablehttp.Client
}

func New(baseURL, proxy string) (*Fetcher, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	client, err := fetch.NewClient(proxy)
	if err != nil {
		return nil, err
	}
	return &Fetcher{BaseURL: baseURL, client: client}, nil
}

func (f *Fetcher) Name() string { return catalogs.NoIntro }

// FetchAll downloads the daily pack and replaces destDir's DAT files with
// its contents. Unlike Redump there is no per-file skip: the pack is one
// unit and previous files are superseded wholesale.
func (f *Fetcher) FetchAll(ctx context.Context, destDir string) (*catalogs.Result, error) {
	// Load the daily page; the session cookie set here is required for the
	// later POSTs.
	page, err := fetch.Get(ctx, f.client, f.BaseURL+dailyPath)
	if err != nil {
		return nil, fmt.Errorf("fetching daily page: %w", err)
	}
	if page.StatusCode != 200 {
		return nil, fmt.Errorf("daily page returned status %d", page.StatusCode)
	}

	form, action, err := requestForm(page.Body)
	if err != nil {
		return nil, err
	}

	prepared, err := fetch.Do(ctx, f.client, http.MethodPost, f.resolve(action), form)
	if err != nil {
		return nil, fmt.Errorf("requesting daily pack: %w", err)
	}

	// The response either is the zip already or carries the download form.
	payload := prepared.Body
	if !isZip(payload) {
		dlForm, dlAction, err := downloadForm(prepared.Body)
		if err != nil {
			return nil, err
		}
		downloaded, err := fetch.Do(ctx, f.client, http.MethodPost, f.resolve(dlAction), dlForm)
		if err != nil {
			return nil, fmt.Errorf("downloading daily pack: %w", err)
		}
		payload = downloaded.Body
	}
	if !isZip(payload) {
		return nil, fmt.Errorf("daily pack response is not a zip archive")
	}

	dats, err := fetch.ExtractDATs(payload)
	if err != nil {
		return nil, err
	}

	if err := utils.EnsureDir(destDir); err != nil {
		return nil, err
	}

	result := &catalogs.Result{}

	// The daily pack supersedes everything from the previous day.
	old, _ := filepath.Glob(filepath.Join(destDir, "*.dat"))
	for _, path := range old {
		if err := os.Remove(path); err == nil {
			result.Removed++
		}
	}

	for name, data := range dats {
		path := filepath.Join(destDir, utils.SanitizeFilename(name))
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, err
		}
		result.Downloaded = append(result.Downloaded, path)
	}
	return result, nil
}

// requestForm collects the daily page's form fields, keeping checked
// checkboxes except the excluded set options, and returns the values to
// POST plus the form action.
func requestForm(pageHTML []byte) (url.Values, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageHTML))
	if err != nil {
		return nil, "", fmt.Errorf("parsing daily page: %w", err)
	}

	// Map checkbox ids to their label text so the excluded options can be
	// recognized regardless of field naming.
	labels := make(map[string]string)
	doc.Find("label[for]").Each(func(_ int, s *goquery.Selection) {
		id, _ := s.Attr("for")
		labels[id] = strings.TrimSpace(s.Text())
	})

	form := url.Values{}
	action := ""
	doc.Find("form").EachWithBreak(func(_ int, formSel *goquery.Selection) bool {
		if formSel.Find("input[type=checkbox]").Length() == 0 {
			return true
		}
		action, _ = formSel.Attr("action")
		formSel.Find("input").Each(func(_ int, input *goquery.Selection) {
			name, ok := input.Attr("name")
			if !ok || name == "" {
				return
			}
			value, _ := input.Attr("value")
			typ, _ := input.Attr("type")
			switch typ {
			case "checkbox":
				if _, checked := input.Attr("checked"); !checked {
					return
				}
				id, _ := input.Attr("id")
				if isExcludedSet(labels[id]) {
					return
				}
				if value == "" {
					value = "on"
				}
				form.Set(name, value)
			case "submit":
				if strings.Contains(strings.ToLower(value), "request") {
					form.Set(name, value)
				}
			default:
				form.Set(name, value)
			}
		})
		return false
	})

	if len(form) == 0 {
		return nil, "", fmt.Errorf("daily page has no request form")
	}
	return form, action, nil
}

// downloadForm finds the post-request form whose submit button delivers the
// zip and returns its fields.
func downloadForm(pageHTML []byte) (url.Values, string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(pageHTML))
	if err != nil {
		return nil, "", fmt.Errorf("parsing request response: %w", err)
	}

	form := url.Values{}
	action := ""
	found := false
	doc.Find("form").EachWithBreak(func(_ int, formSel *goquery.Selection) bool {
		submit := formSel.Find("input[type=submit], button")
		match := false
		submit.Each(func(_ int, s *goquery.Selection) {
			value, _ := s.Attr("value")
			if strings.Contains(strings.ToLower(value+s.Text()), "download") {
				match = true
			}
		})
		if !match {
			return true
		}
		found = true
		action, _ = formSel.Attr("action")
		formSel.Find("input").Each(func(_ int, input *goquery.Selection) {
			name, ok := input.Attr("name")
			if !ok || name == "" {
				return
			}
			value, _ := input.Attr("value")
			form.Set(name, value)
		})
		return false
	})

	if !found {
		return nil, "", fmt.Errorf("request response has no download form")
	}
	return form, action, nil
}

func (f *Fetcher) resolve(action string) string {
	if action == "" {
		return f.BaseURL + dailyPath
	}
	if strings.HasPrefix(action, "http://") || strings.HasPrefix(action, "https://") {
		return action
	}
	if !strings.HasPrefix(action, "/") {
		action = "/" + action
	}
	return f.BaseURL + action
}

func isExcludedSet(label string) bool {
	for _, excluded := range excludedSets {
		if label == excluded || strings.HasPrefix(label, excluded) {
			return true
		}
	}
	return false
}

func isZip(data []byte) bool {
	return len(data) >= 4 && bytes.Equal(data[:4], []byte("PK\x03\x04"))
}
