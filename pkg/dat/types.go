package dat

import "encoding/xml"

// Datafile is a Logiqx-style DAT: one header plus one <game> record per
// release variant. Instances are immutable once parsed; downstream code
// references games by pointer and never mutates them.
type Datafile struct {
	XMLName xml.Name `xml:"datafile"`
	Header  Header   `xml:"header"`
	Games   []Game   `xml:"game"`
}

// Header carries catalog-wide metadata. All fields are passed through
// unchanged when a filtered DAT is written back out.
type Header struct {
	Name        string `xml:"name"`
	Description string `xml:"description"`
	Version     string `xml:"version"`
	Date        string `xml:"date,omitempty"`
	Author      string `xml:"author"`
	Homepage    string `xml:"homepage,omitempty"`
	URL         string `xml:"url,omitempty"`
}

// Game is a single release record: the title string (with its embedded
// region/language/revision tags) plus the ROMs or disc tracks that make it
// up. id and cloneof are No-Intro numbering attributes, passed through
// unchanged so filtered DATs keep their cross-references.
type Game struct {
	Name        string `xml:"name,attr"`
	ID          string `xml:"id,attr,omitempty"`
	CloneOf     string `xml:"cloneof,attr,omitempty"`
	Category    string `xml:"category,omitempty"`
	Description string `xml:"description"`
	ROMs        []ROM  `xml:"rom"`
}

type ROM struct {
	Name   string `xml:"name,attr"`
	Size   int64  `xml:"size,attr"`
	CRC    string `xml:"crc,attr,omitempty"`
	MD5    string `xml:"md5,attr,omitempty"`
	SHA1   string `xml:"sha1,attr,omitempty"`
	SHA256 string `xml:"sha256,attr,omitempty"`
	Status string `xml:"status,attr,omitempty"`
	Serial string `xml:"serial,attr,omitempty"`
}

// Identity returns a stable identity key for the game, used for duplicate
// detection and as the final deterministic tie-break in 1G1R selection.
// The lexicographically smallest SHA1 wins; CRC and ROM name are fallbacks
// for catalogs that don't ship SHA1s.
func (g *Game) Identity() string {
	best := ""
	for _, r := range g.ROMs {
		key := r.SHA1
		if key == "" {
			key = r.CRC
		}
		if key == "" {
			key = r.Name
		}
		if best == "" || key < best {
			best = key
		}
	}
	if best == "" {
		return g.Name
	}
	return best
}
