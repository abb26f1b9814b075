package dat

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
)

// ErrEmptyOutput means a filtered catalog ended up with zero games. Callers
// treat this as a warning (likely profile misconfiguration), not a failure.
var ErrEmptyOutput = errors.New("filtered DAT contains no games")

const doctype = `<!DOCTYPE datafile PUBLIC "-//Logiqx//DTD ROM Management Datafile//EN" "http://www.logiqx.com/Dats/datafile.dtd">`

// Write serializes the datafile in Logiqx format. Game records are written
// in the order given, with their metadata untouched.
func Write(w io.Writer, df *Datafile) error {
	if len(df.Games) == 0 {
		return ErrEmptyOutput
	}

	if _, err := fmt.Fprintf(w, "%s\n%s\n", xml.Header[:len(xml.Header)-1], doctype); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "\t")
	if err := enc.Encode(df); err != nil {
		return fmt.Errorf("encoding DAT: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
