package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("1.2.3", "abc1234", "go1.25")

	got := testutil.ToFloat64(AppInfo.WithLabelValues("1.2.3", "abc1234", "go1.25"))
	if got != 1 {
		t.Errorf("AppInfo gauge = %v, want 1", got)
	}
}

func TestInitializeMetrics(t *testing.T) {
	// Must be safe to call repeatedly and must not panic.
	InitializeMetrics()
	InitializeMetrics()

	// Spot-check that pre-populated series exist with zero values.
	if got := testutil.ToFloat64(ResolverItemsTotal.WithLabelValues("timeout")); got != 0 {
		t.Errorf("ResolverItemsTotal[timeout] = %v, want 0", got)
	}
	if got := testutil.ToFloat64(ValidationsTotal.WithLabelValues("not_found")); got != 0 {
		t.Errorf("ValidationsTotal[not_found] = %v, want 0", got)
	}
}

func TestFilesystemObserver(t *testing.T) {
	o := NewFilesystemObserver()

	before := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("media", "stat"))
	o.ObserveOperation("media", "stat", 0.001, nil)
	after := testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("media", "stat"))
	if after != before {
		t.Errorf("error counter incremented on nil error: %v -> %v", before, after)
	}

	o.ObserveOperation("media", "stat", 0.001, errTest)
	after = testutil.ToFloat64(FilesystemOperationErrors.WithLabelValues("media", "stat"))
	if after != before+1 {
		t.Errorf("error counter = %v, want %v", after, before+1)
	}

	o.ObserveWatcherEvent("create")
	o.ObserveWatcherError()
	o.ObserveWatcherRefresh()
	o.SetWatchedDirectories(3)

	if got := testutil.ToFloat64(WatchedDirectories); got != 3 {
		t.Errorf("WatchedDirectories = %v, want 3", got)
	}
}

var errTest = &testError{}

type testError struct{}

func (e *testError) Error() string { return "test error" }
