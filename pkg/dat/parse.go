package dat

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html/charset"
)

// ErrNoValidGames means a catalog parsed structurally but contained zero
// usable game records. This is the only fatal parse outcome; individual
// malformed records are dropped and counted instead.
var ErrNoValidGames = errors.New("no valid game records in DAT file")

// ParseResult carries the parsed catalog plus per-record parse diagnostics.
type ParseResult struct {
	Datafile *Datafile
	// DroppedRecords counts malformed <game> elements that were skipped.
	DroppedRecords int
}

// Parse reads a Logiqx DAT from r. Malformed game records are dropped and
// counted rather than failing the whole file; Parse only errors when the
// document itself is broken or no records survive.
//
// Some catalogs ship DATs in non-UTF8 encodings, so the decoder honors the
// XML declaration's charset.
func Parse(r io.Reader) (*ParseResult, error) {
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	dec.Strict = false

	res := &ParseResult{Datafile: &Datafile{}}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading DAT: %w", err)
		}

		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}

		switch start.Name.Local {
		case "datafile":
			// Descend into the document element.
			continue
		case "header":
			if err := dec.DecodeElement(&res.Datafile.Header, &start); err != nil {
				return nil, fmt.Errorf("decoding DAT header: %w", err)
			}
		case "game", "machine":
			var g Game
			if err := dec.DecodeElement(&g, &start); err != nil {
				res.DroppedRecords++
				continue
			}
			if strings.TrimSpace(g.Name) == "" {
				res.DroppedRecords++
				continue
			}
			res.Datafile.Games = append(res.Datafile.Games, g)
		default:
			if err := dec.Skip(); err != nil {
				return nil, fmt.Errorf("skipping element %q: %w", start.Name.Local, err)
			}
		}
	}

	if len(res.Datafile.Games) == 0 {
		return res, ErrNoValidGames
	}
	return res, nil
}
