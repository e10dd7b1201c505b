package metrics_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/checkmate/internal/metrics"
	"github.com/agentstation/checkmate/pkg/errors"
)

func TestRecorder(t *testing.T) {
	r := metrics.New()
	r.Observe(metrics.OutcomeSuccess, 2*time.Millisecond)
	r.Observe(metrics.OutcomeSuccess, time.Millisecond)
	r.Observe(metrics.OutcomeMismatch, time.Millisecond)
	r.Rules(10, 2, 1)
	r.Mismatch()

	count, err := testutil.GatherAndCount(r.Gatherer(), "checkmate_reconciliations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one series per outcome")

	count, err = testutil.GatherAndCount(r.Gatherer(), "checkmate_rules_total")
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestNilRecorder(t *testing.T) {
	var r *metrics.Recorder
	assert.NotPanics(t, func() {
		r.Observe(metrics.OutcomeSuccess, time.Second)
		r.Rules(1, 1, 1)
		r.Mismatch()
		r.Downgrade()
	})
}

func TestWriteToTextfile(t *testing.T) {
	r := metrics.New()
	r.Observe(metrics.OutcomeParse, time.Millisecond)

	path := filepath.Join(t.TempDir(), "checkmate.prom")
	require.NoError(t, r.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `checkmate_reconciliations_total{outcome="parse_error"} 1`)
}

func TestWriteToTextfileError(t *testing.T) {
	r := metrics.New()
	err := r.WriteToTextfile(filepath.Join(t.TempDir(), "missing", "dir", "x.prom"))
	require.Error(t, err)
	var ioErr *errors.IOError
	assert.ErrorAs(t, err, &ioErr)
}

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, metrics.OutcomeSuccess},
		{errors.NewIdentityMismatchError("a", "b"), metrics.OutcomeMismatch},
		{errors.NewParseError("cklb", "f", "", "bad", nil), metrics.OutcomeParse},
		{errors.NewMergeError("a", "b", nil, errors.New("x")), metrics.OutcomeMerge},
		{errors.ErrCanceled, metrics.OutcomeCanceled},
		{errors.New("boom"), metrics.OutcomeError},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, metrics.OutcomeOf(tt.err))
		})
	}
}
