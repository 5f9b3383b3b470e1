package metrics

import (
	"testing"
)

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()
	if reg == nil {
		t.Fatal("expected non-nil registry")
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(mfs) == 0 {
		t.Error("expected some metrics to be registered")
	}
}

func TestRegistry_RecordRun(t *testing.T) {
	reg := NewRegistry()
	reg.RecordRun("success", 12.5)
	reg.RecordRotation(2, 1, 1)
	reg.RecordArchive(4096)
	reg.MarkSuccess(1755000000)

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}

	want := map[string]bool{
		"relic_runs_total":                     false,
		"relic_artifacts_deleted_total":        false,
		"relic_rotation_errors_total":          false,
		"relic_archive_size_bytes":             false,
		"relic_last_success_timestamp_seconds": false,
	}
	for _, mf := range mfs {
		if _, ok := want[mf.GetName()]; ok {
			want[mf.GetName()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("metric %s not gathered", name)
		}
	}
}

func TestRegistry_NilSafe(t *testing.T) {
	var reg *Registry
	reg.RecordRun("failed", 1)
	reg.RecordRotation(0, 0, 0)
	reg.RecordArchive(0)
	reg.MarkSuccess(0)
}
