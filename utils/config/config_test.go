package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/config"
	"gopkg.in/yaml.v2"
)

func TestDefaultPreservesExplicitZero(t *testing.T) {
	c := config.Default()
	raw := `
control:
  step: {start: 0, total: 100, interval: 0.1}
traffic:
  slowdown_prob: 0
  spawn_prob: 0
`
	require.NoError(t, yaml.UnmarshalStrict([]byte(raw), &c))
	rc := config.NewRuntimeConfig(c)

	// 显式写出的0保持为0
	assert.Equal(t, 0.0, rc.Traffic.SlowdownProb)
	assert.Equal(t, 0.0, rc.Traffic.SpawnProb)
	// 省略的字段保留默认值
	assert.Equal(t, 0.2, rc.Traffic.DespawnProb)
	assert.Equal(t, 7.5, rc.Traffic.CellSize)
	assert.Equal(t, 0.1, rc.Agent.BusRatio)
	assert.Equal(t, 12.0, rc.Signal.Green)
	assert.Equal(t, 0.1, rc.C.Step.Interval)
}

func TestRuntimeConfigClamping(t *testing.T) {
	c := config.Default()
	c.Traffic.SlowdownProb = 1.5
	c.Agent.BusRatio = -0.5
	rc := config.NewRuntimeConfig(c)
	assert.Equal(t, 1.0, rc.Traffic.SlowdownProb)
	assert.Equal(t, 0.0, rc.Agent.BusRatio)
}

func TestRuntimeConfigStructuralFallback(t *testing.T) {
	// 结构性旋钮的非法零值回落到默认值
	rc := config.NewRuntimeConfig(config.Config{})
	assert.Equal(t, 7.5, rc.Traffic.CellSize)
	assert.EqualValues(t, 5, rc.Traffic.MaxVelocity)
	assert.EqualValues(t, 10, rc.C.CaTickInterval)
	assert.Equal(t, 12.0, rc.Agent.VehicleBaseSpeed)
	assert.Equal(t, 3.0, rc.Signal.Yellow)
}
