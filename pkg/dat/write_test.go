package dat

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestWriteRoundTrip(t *testing.T) {
	res, err := Parse(strings.NewReader(sampleDAT))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, res.Datafile); err != nil {
		t.Fatalf("write: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "<?xml") {
		t.Fatalf("missing XML declaration:\n%s", out[:60])
	}
	if !strings.Contains(out, "Logiqx//DTD ROM Management Datafile") {
		t.Fatal("missing doctype")
	}

	reparsed, err := Parse(strings.NewReader(out))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}
	if len(reparsed.Datafile.Games) != len(res.Datafile.Games) {
		t.Fatalf("game count changed: %d -> %d", len(res.Datafile.Games), len(reparsed.Datafile.Games))
	}
	if reparsed.Datafile.Games[0].Name != res.Datafile.Games[0].Name {
		t.Fatalf("game name changed: %q", reparsed.Datafile.Games[0].Name)
	}
	if reparsed.Datafile.Games[0].ROMs[0].SHA1 != res.Datafile.Games[0].ROMs[0].SHA1 {
		t.Fatal("rom metadata changed")
	}
}

// No-Intro records carry numbering and verification attributes beyond the
// common set. None of them may be lost on the way through a filter pass.
func TestWriteKeepsExtendedAttributes(t *testing.T) {
	const input = `<?xml version="1.0"?>
<datafile>
	<header>
		<name>Nintendo - Game Boy</name>
		<description>Nintendo - Game Boy</description>
		<version>20250830-123456</version>
		<author>No-Intro</author>
	</header>
	<game name="Example Game (World)" id="0001" cloneof="0002">
		<category>Games</category>
		<description>Example Game (World)</description>
		<rom name="Example Game (World).gb" size="32768" crc="11111111" md5="aaaa" sha1="bbbb" sha256="cccc" status="verified" serial="DMG-EX-0"/>
	</game>
</datafile>
`
	res, err := Parse(strings.NewReader(input))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, res.Datafile); err != nil {
		t.Fatalf("write: %v", err)
	}
	reparsed, err := Parse(strings.NewReader(buf.String()))
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}

	g := reparsed.Datafile.Games[0]
	if g.ID != "0001" || g.CloneOf != "0002" {
		t.Fatalf("game attributes lost: id=%q cloneof=%q", g.ID, g.CloneOf)
	}
	r := g.ROMs[0]
	if r.SHA256 != "cccc" {
		t.Fatalf("sha256 lost: %q", r.SHA256)
	}
	if r.Status != "verified" {
		t.Fatalf("status lost: %q", r.Status)
	}
	if r.Serial != "DMG-EX-0" {
		t.Fatalf("serial lost: %q", r.Serial)
	}
}

func TestWritePreservesOrder(t *testing.T) {
	df := &Datafile{
		Header: Header{Name: "T", Description: "T", Version: "1", Author: "t"},
		Games: []Game{
			{Name: "Zeta (USA)", ROMs: []ROM{{Name: "z.bin", Size: 1}}},
			{Name: "Alpha (USA)", ROMs: []ROM{{Name: "a.bin", Size: 1}}},
		},
	}

	var buf bytes.Buffer
	if err := Write(&buf, df); err != nil {
		t.Fatalf("write: %v", err)
	}
	out := buf.String()
	if strings.Index(out, "Zeta") > strings.Index(out, "Alpha") {
		t.Fatal("output order does not follow input order")
	}
}

func TestWriteEmptyOutput(t *testing.T) {
	df := &Datafile{Header: Header{Name: "T"}}

	err := Write(&bytes.Buffer{}, df)
	if !errors.Is(err, ErrEmptyOutput) {
		t.Fatalf("expected ErrEmptyOutput, got %v", err)
	}
}
