package promcollector

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/songdex"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.RecordRescan(songdex.ScanResult{Status: songdex.ScanCompletedWithErrors, Songs: 10, Errors: []string{"a", "b"}}, time.Second, nil)
	c.RecordRescan(songdex.ScanResult{Status: songdex.ScanFileInUse}, time.Millisecond, nil)
	c.RecordRescan(songdex.ScanResult{Status: songdex.ScanFailed}, time.Millisecond, errors.New("boom"))
	c.RecordSearch(7, time.Millisecond)
	c.RecordLookup(time.Microsecond, nil)
	c.RecordRecovery(errors.New("corrupt"))

	assert.Equal(t, 1.0, testutil.ToFloat64(c.rescans.WithLabelValues("completed_with_errors")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rescans.WithLabelValues("file_in_use")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rescans.WithLabelValues("failed")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.filesFailed))
	assert.Equal(t, 10.0, testutil.ToFloat64(c.songs))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.recoveries))

	n, err := testutil.GatherAndCount(reg, "songdex_operation_latency_seconds")
	require.NoError(t, err)
	assert.Equal(t, 4, n) // rescan/success, rescan/error, search/success, lookup/success
}

func TestCollector_DuplicateRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	assert.Panics(t, func() { New(reg) })
}
