// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorderCounts(t *testing.T) {
	r := New()
	r.Record("papers", "new")
	r.Record("papers", "new")
	r.Record("profiles", "stub")
	r.Conference("walked")
	r.RemoteCall("fetch_profile", 10*time.Millisecond, nil)
	r.RemoteCall("fetch_profile", 20*time.Millisecond, errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(r.RecordsCounter().WithLabelValues("papers", "new")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RecordsCounter().WithLabelValues("profiles", "stub")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ConferencesCounter().WithLabelValues("walked")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RemoteCallsCounter().WithLabelValues("fetch_profile", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.RemoteCallsCounter().WithLabelValues("fetch_profile", "error")))
}

func TestNilRecorder(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.Record("papers", "new")
		r.Conference("walked")
		r.RemoteCall("list_venues", time.Second, nil)
		assert.NoError(t, r.WriteTextfile("ignored.prom"))
		assert.Nil(t, r.Registry())
		assert.Nil(t, r.RecordsCounter())
		assert.Nil(t, r.RemoteCallsCounter())
		assert.Nil(t, r.ConferencesCounter())
	})
}

func TestWriteTextfile(t *testing.T) {
	r := New()
	r.Record("reviews", "changed")

	path := filepath.Join(t.TempDir(), "harvester.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `harvester_records_total{kind="reviews",outcome="changed"} 1`)
}

func TestRecordersAreIndependent(t *testing.T) {
	a, b := New(), New()
	a.Record("papers", "new")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.RecordsCounter().WithLabelValues("papers", "new")))
}
