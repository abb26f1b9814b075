// Package fetch is the shared HTTP plumbing for catalog downloads: a
// retrying client with the headers upstream sites expect, plus helpers for
// the Content-Disposition metadata and zipped DAT payloads they serve.
package fetch

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"regexp"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Response is a downloaded payload plus the metadata catalogs embed in the
// Content-Disposition header.
type Response struct {
	StatusCode int
	Body       []byte
	// Filename is the server-suggested filename, empty when absent.
	Filename string
	// Date is the catalog export date embedded in the suggested filename,
	// e.g. "2025-10-23 18-11-28" from a Redump header. Empty when absent.
	Date string
}

// NewClient builds the retrying HTTP client used for all catalog traffic.
// proxy may be empty.
func NewClient(proxy string) (*retryablehttp.Client, error) {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.New(io.Discard, "", 0)
	retryClient.RetryMax = 3

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	retryClient.HTTPClient.Jar = jar

	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		retryClient.HTTPClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}
	return retryClient, nil
}

// Do performs one request with the standard headers and reads the whole body.
func Do(ctx context.Context, client *retryablehttp.Client, method, rawURL string, form url.Values) (*Response, error) {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "*/*")
	req.Header.Set("Accept-Language", "en")
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	res := &Response{StatusCode: resp.StatusCode, Body: data}
	res.Filename, res.Date = parseContentDisposition(resp.Header.Get("Content-Disposition"))
	return res, nil
}

// Get is Do without a form body.
func Get(ctx context.Context, client *retryablehttp.Client, rawURL string) (*Response, error) {
	return Do(ctx, client, http.MethodGet, rawURL, nil)
}

// Head fetches only the response headers, for checking a remote file's
// suggested name and date without downloading it.
func Head(ctx context.Context, client *retryablehttp.Client, rawURL string) (*Response, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	res := &Response{StatusCode: resp.StatusCode}
	res.Filename, res.Date = parseContentDisposition(resp.Header.Get("Content-Disposition"))
	return res, nil
}

var (
	filenameRe = regexp.MustCompile(`filename="(.*?)"`)
	dateRe     = regexp.MustCompile(`\) \((.*?)\)\.`)
)

func parseContentDisposition(header string) (filename, date string) {
	if !strings.Contains(header, "filename=") {
		return "", ""
	}
	if m := filenameRe.FindStringSubmatch(header); m != nil {
		filename = m[1]
	}
	if m := dateRe.FindStringSubmatch(header); m != nil {
		date = m[1]
	}
	return filename, date
}

// ExtractDATs pulls every .dat member out of a zip payload, keyed by the
// member's base name.
func ExtractDATs(payload []byte) (map[string][]byte, error) {
	archive, err := zip.NewReader(bytes.NewReader(payload), int64(len(payload)))
	if err != nil {
		return nil, fmt.Errorf("opening zip: %w", err)
	}

	dats := make(map[string][]byte)
	for _, f := range archive.File {
		if !strings.HasSuffix(strings.ToLower(f.Name), ".dat") {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, err
		}
		base := f.Name
		if i := strings.LastIndexAny(base, "/\\"); i >= 0 {
			base = base[i+1:]
		}
		dats[base] = data
	}
	if len(dats) == 0 {
		return nil, fmt.Errorf("no .dat files in zip archive")
	}
	return dats, nil
}
