package storage

import "time"

// Run statuses recorded for each (profile, collection, system) unit.
const (
	StatusSuccess     = "success"
	StatusNotRequired = "not-required" // everything filtered out by the profile
	StatusNoGames     = "no-games"     // input DAT had no valid records
	StatusFailed      = "failed"
)

// Run is one filter run over a single input DAT under one profile.
type Run struct {
	Profile    string
	Collection string
	System     string
	InputFile  string
	Status     string
	Groups     int
	Winners    int
	Excluded   int
	OutputPath string
	Error      string
	RunAt      time.Time
}

// DATFile records the current downloaded DAT version for a system.
type DATFile struct {
	Collection   string
	System       string
	Filename     string
	DownloadedAt time.Time
}

// StatRow is one aggregate line for the stats command.
type StatRow struct {
	Profile    string
	Collection string
	Status     string
	Count      int
	Winners    int
	Excluded   int
}
