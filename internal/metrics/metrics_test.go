package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/heightray/pkg/math"
	"github.com/Faultbox/heightray/pkg/terrain"
)

func TestCollector_ObserveMarch(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.ObserveMarch(terrain.MarchResult{Hit: true, Steps: 3})
	c.ObserveMarch(terrain.MarchResult{Hit: true, Steps: 5})
	c.ObserveMarch(terrain.MarchResult{Steps: 40})
	c.ObserveMarch(terrain.MarchResult{Degenerate: true})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.rays.WithLabelValues(ResultHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rays.WithLabelValues(ResultMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rays.WithLabelValues(ResultDegenerate)))

	// Degenerate rays never march, so they are not in the histogram.
	assert.Equal(t, 1, testutil.CollectAndCount(c.marchSteps))
	expected := `
# HELP heightray_march_steps Loop iterations per ray march.
# TYPE heightray_march_steps histogram
heightray_march_steps_bucket{le="1"} 0
heightray_march_steps_bucket{le="2"} 0
heightray_march_steps_bucket{le="4"} 1
heightray_march_steps_bucket{le="8"} 2
heightray_march_steps_bucket{le="16"} 2
heightray_march_steps_bucket{le="32"} 2
heightray_march_steps_bucket{le="64"} 3
heightray_march_steps_bucket{le="128"} 3
heightray_march_steps_bucket{le="256"} 3
heightray_march_steps_bucket{le="512"} 3
heightray_march_steps_bucket{le="1024"} 3
heightray_march_steps_bucket{le="2048"} 3
heightray_march_steps_bucket{le="+Inf"} 3
heightray_march_steps_sum 48
heightray_march_steps_count 3
`
	require.NoError(t, testutil.CollectAndCompare(c.marchSteps, strings.NewReader(expected)))
}

func TestCollector_TerrainWiring(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	ter, err := terrain.New(4, 1, terrain.WithObserver(c))
	require.NoError(t, err)

	require.NoError(t, ter.SetWholeMap(make([]float32, 16)))
	assert.Error(t, ter.SetWholeMap(make([]float32, 3)))

	ter.SetHeightAt(1, 1, 0.5)
	ter.SetHeightAt(9, 9, 0.5) // out of range, not counted

	ter.CastRay(math.Vec3{X: 1.5, Y: 3, Z: 1.5}, math.Vec3{Y: -1})
	ter.CastRay(math.Vec3{X: 0.5, Y: 0.1, Z: 1.5}, math.Vec3{X: 1})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.mapLoads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.mapLoads.WithLabelValues("rejected")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.pointUpdates))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rays.WithLabelValues(ResultDegenerate)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.rays.WithLabelValues(ResultHit)))
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.ObservePointUpdate()

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "heightray_point_updates_total 1")
}
