// internal/retention/classify.go
package retention

import (
	"fmt"
	"sort"
	"time"

	"github.com/relicbackup/relic/internal/catalog"
	"github.com/relicbackup/relic/internal/core"
)

// Bucket is the tier an artifact falls into based on its age.
type Bucket int

const (
	BucketDaily Bucket = iota
	BucketWeekly
	BucketMonthly
	BucketExpired
	BucketUnmanaged
)

func (b Bucket) String() string {
	switch b {
	case BucketDaily:
		return "daily"
	case BucketWeekly:
		return "weekly"
	case BucketMonthly:
		return "monthly"
	case BucketExpired:
		return "expired"
	case BucketUnmanaged:
		return "unmanaged"
	default:
		return "unknown"
	}
}

// Bucketize assigns an artifact to its tier. Intervals are half-open
// toward the newer side: an age exactly equal to a window threshold
// belongs to the older bucket.
func Bucketize(a catalog.Artifact, now time.Time, p Policy) Bucket {
	if !a.Managed {
		return BucketUnmanaged
	}
	age := now.Sub(a.Stamp)
	switch {
	case age < p.DailyWindow:
		return BucketDaily
	case age < p.WeeklyWindow:
		return BucketWeekly
	case age < p.MonthlyWindow:
		return BucketMonthly
	default:
		return BucketExpired
	}
}

// Decision partitions the managed input artifacts into Keep and Delete.
// Unmanaged artifacts appear in neither; they are carried separately so
// callers can report them, but they are never deletion candidates.
type Decision struct {
	Keep      []catalog.Artifact
	Delete    []catalog.Artifact
	Unmanaged []catalog.Artifact
}

// Classify computes the retention decision for the given artifacts at
// the given wall-clock time. Weekly and monthly groups are keyed by
// calendar unit (UTC) rather than by day-count buckets anchored to now,
// so the surviving artifact of a group does not change merely because
// time advanced within the same week or month. Local and remote copies
// of the same backup are grouped per location, so keeping the local
// survivor never condemns its remote twin.
func Classify(artifacts []catalog.Artifact, now time.Time, policy Policy) (Decision, error) {
	if err := policy.Validate(); err != nil {
		return Decision{}, err
	}

	var d Decision
	weekly := map[string][]catalog.Artifact{}
	monthly := map[string][]catalog.Artifact{}

	for _, a := range artifacts {
		switch Bucketize(a, now, policy) {
		case BucketUnmanaged:
			d.Unmanaged = append(d.Unmanaged, a)
		case BucketDaily:
			d.Keep = append(d.Keep, a)
		case BucketWeekly:
			k := string(a.Location) + "/" + weekKey(a.Stamp)
			weekly[k] = append(weekly[k], a)
		case BucketMonthly:
			k := string(a.Location) + "/" + monthKey(a.Stamp)
			monthly[k] = append(monthly[k], a)
		case BucketExpired:
			d.Delete = append(d.Delete, a)
		}
	}

	for _, group := range weekly {
		survivor, rest := splitSurvivor(group)
		d.Keep = append(d.Keep, survivor)
		d.Delete = append(d.Delete, rest...)
	}
	for _, group := range monthly {
		survivor, rest := splitSurvivor(group)
		d.Keep = append(d.Keep, survivor)
		d.Delete = append(d.Delete, rest...)
	}

	sortArtifacts(d.Keep)
	sortArtifacts(d.Delete)
	sortArtifacts(d.Unmanaged)

	if err := checkPartition(artifacts, d); err != nil {
		return Decision{}, err
	}
	return d, nil
}

// splitSurvivor returns the artifact with the latest timestamp and the
// remainder of the group. On identical timestamps, which the one-second
// name resolution should rule out, the lexicographically greatest name
// wins.
func splitSurvivor(group []catalog.Artifact) (catalog.Artifact, []catalog.Artifact) {
	best := 0
	for i := 1; i < len(group); i++ {
		a, b := group[i], group[best]
		if a.Stamp.After(b.Stamp) || (a.Stamp.Equal(b.Stamp) && a.Name > b.Name) {
			best = i
		}
	}
	rest := make([]catalog.Artifact, 0, len(group)-1)
	for i, a := range group {
		if i != best {
			rest = append(rest, a)
		}
	}
	return group[best], rest
}

// weekKey groups by ISO calendar week in UTC.
func weekKey(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// monthKey groups by calendar month in UTC.
func monthKey(t time.Time) string {
	u := t.UTC()
	return fmt.Sprintf("%04d-%02d", u.Year(), u.Month())
}

func sortArtifacts(as []catalog.Artifact) {
	sort.Slice(as, func(i, j int) bool {
		if !as[i].Stamp.Equal(as[j].Stamp) {
			return as[i].Stamp.Before(as[j].Stamp)
		}
		if as[i].Name != as[j].Name {
			return as[i].Name < as[j].Name
		}
		return as[i].Location < as[j].Location
	})
}

// checkPartition verifies that every managed input landed in exactly one
// of Keep/Delete. A violation means a classifier bug, and returning a
// broken decision would let the executor delete the wrong files.
func checkPartition(input []catalog.Artifact, d Decision) error {
	managed := 0
	for _, a := range input {
		if a.Managed {
			managed++
		}
	}
	if len(d.Keep)+len(d.Delete) != managed {
		return core.WrapError(core.ErrPartition,
			fmt.Errorf("keep=%d delete=%d managed=%d", len(d.Keep), len(d.Delete), managed))
	}
	seen := make(map[string]struct{}, managed)
	for _, a := range d.Keep {
		seen[identity(a)] = struct{}{}
	}
	for _, a := range d.Delete {
		if _, dup := seen[identity(a)]; dup {
			return core.WrapError(core.ErrPartition,
				fmt.Errorf("artifact %s (%s) in both keep and delete", a.Name, a.Location))
		}
	}
	return nil
}

func identity(a catalog.Artifact) string {
	return string(a.Location) + "/" + a.Name
}
