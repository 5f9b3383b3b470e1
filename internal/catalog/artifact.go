// internal/catalog/artifact.go
package catalog

import (
	"regexp"
	"time"

	"github.com/relicbackup/relic/internal/core"
)

// Location identifies where an artifact lives.
type Location string

const (
	Local  Location = "local"
	Remote Location = "remote"
)

// Artifact is one backup file, local or remote. The timestamp embedded in
// the name is the source of truth for its age; mtime is never consulted
// because remote listings do not reliably preserve it.
type Artifact struct {
	Name      string
	Path      string // absolute path, local artifacts only
	Location  Location
	SizeBytes int64
	Stamp     time.Time
	Managed   bool
}

// stampPattern matches the <base>_<YYYYMMDD>_<HHMMSS>.zip naming scheme.
var stampPattern = regexp.MustCompile(`_(\d{8}_\d{6})\.zip$`)

const stampLayout = "20060102_150405"

// ParseStamp extracts the UTC timestamp embedded in an artifact name.
// Wrong digit counts, impossible calendar dates and impossible times all
// return core.ErrParse; there is no partial or guessed result.
func ParseStamp(name string) (time.Time, error) {
	m := stampPattern.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, core.WrapError(core.ErrParse, nil)
	}
	ts, err := time.Parse(stampLayout, m[1])
	if err != nil {
		return time.Time{}, core.WrapError(core.ErrParse, err)
	}
	return ts, nil
}

// StampedName builds the canonical artifact name for a backup of base
// taken at t.
func StampedName(base string, t time.Time) string {
	return base + "_" + t.UTC().Format(stampLayout) + ".zip"
}

// newArtifact fills in Stamp and Managed from the name.
func newArtifact(name, path string, loc Location, size int64) Artifact {
	a := Artifact{
		Name:      name,
		Path:      path,
		Location:  loc,
		SizeBytes: size,
	}
	if ts, err := ParseStamp(name); err == nil {
		a.Stamp = ts
		a.Managed = true
	}
	return a
}
