package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetMoviesLoaded(t *testing.T) {
	SetMoviesLoaded(42)
	if got := testutil.ToFloat64(moviesLoaded); got != 42 {
		t.Errorf("moviesLoaded = %v, want 42", got)
	}
}

func TestCountersIncrement(t *testing.T) {
	before := testutil.ToFloat64(pipelineRunsTotal.WithLabelValues("ok"))
	RecordPipelineRun("ok", 3*time.Millisecond)
	if got := testutil.ToFloat64(pipelineRunsTotal.WithLabelValues("ok")); got != before+1 {
		t.Errorf("pipeline runs = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(digestsTotal.WithLabelValues("failed"))
	RecordDigest("failed")
	if got := testutil.ToFloat64(digestsTotal.WithLabelValues("failed")); got != before+1 {
		t.Errorf("digests = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(botCommandsTotal.WithLabelValues("top"))
	RecordCommand("top")
	if got := testutil.ToFloat64(botCommandsTotal.WithLabelValues("top")); got != before+1 {
		t.Errorf("commands = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(errorsTotal.WithLabelValues("fetch"))
	RecordError("fetch")
	if got := testutil.ToFloat64(errorsTotal.WithLabelValues("fetch")); got != before+1 {
		t.Errorf("errors = %v, want %v", got, before+1)
	}
}
