// internal/retention/classify_test.go
package retention

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/relicbackup/relic/internal/catalog"
	"github.com/relicbackup/relic/internal/core"
)

var testPolicy = Policy{
	DailyWindow:   7 * 24 * time.Hour,
	WeeklyWindow:  30 * 24 * time.Hour,
	MonthlyWindow: 365 * 24 * time.Hour,
}

var testNow = time.Date(2025, 8, 15, 12, 0, 0, 0, time.UTC)

// art builds a managed local artifact whose timestamp is age before testNow.
func art(age time.Duration) catalog.Artifact {
	return artAt(testNow.Add(-age), catalog.Local)
}

func artAt(stamp time.Time, loc catalog.Location) catalog.Artifact {
	return catalog.Artifact{
		Name:     catalog.StampedName("app", stamp),
		Location: loc,
		Stamp:    stamp,
		Managed:  true,
	}
}

func day(n int) time.Duration { return time.Duration(n) * 24 * time.Hour }

func names(as []catalog.Artifact) []string {
	out := make([]string, len(as))
	for i, a := range as {
		out[i] = a.Name
	}
	return out
}

func contains(as []catalog.Artifact, name string) bool {
	for _, a := range as {
		if a.Name == name {
			return true
		}
	}
	return false
}

func TestPolicy_Validate(t *testing.T) {
	tests := []struct {
		name    string
		policy  Policy
		wantErr bool
	}{
		{"valid", testPolicy, false},
		{"equal windows", Policy{day(7), day(7), day(7)}, false},
		{"daily above weekly", Policy{day(30), day(7), day(365)}, true},
		{"weekly above monthly", Policy{day(7), day(400), day(365)}, true},
		{"zero daily", Policy{0, day(30), day(365)}, true},
		{"negative monthly", Policy{day(7), day(30), -day(365)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.policy.Validate()
			if tt.wantErr {
				if !errors.Is(err, core.ErrConfig) {
					t.Errorf("expected ErrConfig, got %v", err)
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestBucketize_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		age  time.Duration
		want Bucket
	}{
		{"fresh", time.Hour, BucketDaily},
		{"just under daily", testPolicy.DailyWindow - time.Second, BucketDaily},
		{"exactly daily goes weekly", testPolicy.DailyWindow, BucketWeekly},
		{"just under weekly", testPolicy.WeeklyWindow - time.Second, BucketWeekly},
		{"exactly weekly goes monthly", testPolicy.WeeklyWindow, BucketMonthly},
		{"just under monthly", testPolicy.MonthlyWindow - time.Second, BucketMonthly},
		{"exactly monthly goes expired", testPolicy.MonthlyWindow, BucketExpired},
		{"ancient", 10 * 365 * 24 * time.Hour, BucketExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Bucketize(art(tt.age), testNow, testPolicy)
			if got != tt.want {
				t.Errorf("age %v: got %v, want %v", tt.age, got, tt.want)
			}
		})
	}
}

func TestBucketize_Unmanaged(t *testing.T) {
	a := catalog.Artifact{Name: "mydata_backup.zip", Location: catalog.Local}
	if got := Bucketize(a, testNow, testPolicy); got != BucketUnmanaged {
		t.Errorf("got %v, want unmanaged", got)
	}
}

// Scenario: fresh artifacts kept daily, one survivor per older week and
// month, ancient artifacts dropped.
func TestClassify_TieredScenario(t *testing.T) {
	fresh1 := art(day(1))
	fresh3 := art(day(3))
	week10 := art(day(10))               // Tue Aug 5
	week11 := art(day(11))               // Mon Aug 4, same ISO week, earlier
	month40 := art(day(40))              // Jul 6, sole entry in July
	month70 := art(day(70))              // Jun 6
	month75 := art(day(75))              // Jun 1, same month, earlier
	ancient := art(day(400))

	input := []catalog.Artifact{fresh1, fresh3, week10, week11, month40, month70, month75, ancient}
	d, err := Classify(input, testNow, testPolicy)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	wantKeep := []string{fresh1.Name, fresh3.Name, week10.Name, month40.Name, month70.Name}
	for _, name := range wantKeep {
		if !contains(d.Keep, name) {
			t.Errorf("expected %s in keep; keep=%v", name, names(d.Keep))
		}
	}
	wantDelete := []string{week11.Name, month75.Name, ancient.Name}
	for _, name := range wantDelete {
		if !contains(d.Delete, name) {
			t.Errorf("expected %s in delete; delete=%v", name, names(d.Delete))
		}
	}
	if len(d.Keep) != 5 || len(d.Delete) != 3 {
		t.Errorf("keep=%d delete=%d, want 5/3", len(d.Keep), len(d.Delete))
	}
}

func TestClassify_Empty(t *testing.T) {
	d, err := Classify(nil, testNow, testPolicy)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(d.Keep) != 0 || len(d.Delete) != 0 || len(d.Unmanaged) != 0 {
		t.Errorf("expected empty decision, got %+v", d)
	}
}

func TestClassify_AllFresh(t *testing.T) {
	input := []catalog.Artifact{art(time.Hour), art(day(2)), art(day(6))}
	d, err := Classify(input, testNow, testPolicy)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(d.Keep) != 3 || len(d.Delete) != 0 {
		t.Errorf("expected all-keep, got keep=%d delete=%d", len(d.Keep), len(d.Delete))
	}
}

func TestClassify_UnmanagedExcluded(t *testing.T) {
	stray := catalog.Artifact{Name: "mydata_backup.zip", Location: catalog.Local}
	input := []catalog.Artifact{stray, art(day(400))}
	d, err := Classify(input, testNow, testPolicy)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if contains(d.Keep, stray.Name) || contains(d.Delete, stray.Name) {
		t.Error("unmanaged artifact must appear in neither keep nor delete")
	}
	if !contains(d.Unmanaged, stray.Name) {
		t.Error("unmanaged artifact should be reported")
	}
}

func TestClassify_InvalidPolicy(t *testing.T) {
	_, err := Classify([]catalog.Artifact{art(day(1))}, testNow, Policy{day(30), day(7), day(365)})
	if !errors.Is(err, core.ErrConfig) {
		t.Errorf("expected ErrConfig, got %v", err)
	}
}

func TestClassify_TieBreakByName(t *testing.T) {
	stamp := testNow.Add(-day(10))
	a := artAt(stamp, catalog.Local)
	a.Name = "aaa_" + stamp.Format("20060102_150405") + ".zip"
	b := artAt(stamp, catalog.Local)
	b.Name = "zzz_" + stamp.Format("20060102_150405") + ".zip"

	d, err := Classify([]catalog.Artifact{a, b}, testNow, testPolicy)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !contains(d.Keep, b.Name) || !contains(d.Delete, a.Name) {
		t.Errorf("lexicographically greatest name should survive; keep=%v delete=%v",
			names(d.Keep), names(d.Delete))
	}
}

// A backup present both locally and remotely is grouped per location, so
// keeping one copy never deletes the other.
func TestClassify_PerLocationGroups(t *testing.T) {
	stamp := testNow.Add(-day(10))
	local := artAt(stamp, catalog.Local)
	remote := artAt(stamp, catalog.Remote)

	d, err := Classify([]catalog.Artifact{local, remote}, testNow, testPolicy)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if len(d.Keep) != 2 || len(d.Delete) != 0 {
		t.Errorf("both copies should survive; keep=%d delete=%d", len(d.Keep), len(d.Delete))
	}
}

func TestClassify_Partition(t *testing.T) {
	input := []catalog.Artifact{
		art(day(1)), art(day(8)), art(day(9)), art(day(45)), art(day(50)),
		art(day(200)), art(day(400)), art(day(500)),
		{Name: "stray.zip", Location: catalog.Local},
	}
	d, err := Classify(input, testNow, testPolicy)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	managed := 0
	for _, a := range input {
		if a.Managed {
			managed++
		}
	}
	if len(d.Keep)+len(d.Delete) != managed {
		t.Errorf("keep+delete = %d, want %d", len(d.Keep)+len(d.Delete), managed)
	}
	seen := map[string]bool{}
	for _, a := range d.Keep {
		seen[a.Name] = true
	}
	for _, a := range d.Delete {
		if seen[a.Name] {
			t.Errorf("%s appears in both keep and delete", a.Name)
		}
	}
}

func TestClassify_Idempotent(t *testing.T) {
	input := []catalog.Artifact{art(day(1)), art(day(10)), art(day(11)), art(day(70)), art(day(400))}
	d1, err := Classify(input, testNow, testPolicy)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	d2, err := Classify(input, testNow, testPolicy)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	if !reflect.DeepEqual(d1, d2) {
		t.Error("same inputs must yield identical decisions")
	}
}

// The weekly survivor must not flip when the clock advances within the
// same bucket, or repeated runs would oscillate deletions.
func TestClassify_MonotonicStability(t *testing.T) {
	early := art(day(11))
	late := art(day(10))
	input := []catalog.Artifact{early, late}

	d1, err := Classify(input, testNow, testPolicy)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}
	d2, err := Classify(input, testNow.Add(6*time.Hour), testPolicy)
	if err != nil {
		t.Fatalf("Classify: %v", err)
	}

	if !contains(d1.Keep, late.Name) || !contains(d2.Keep, late.Name) {
		t.Errorf("survivor changed under a later now: %v then %v", names(d1.Keep), names(d2.Keep))
	}
}
