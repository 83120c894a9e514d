package signal_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/clock"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/graph"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/signal"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/config"
)

type testContext struct {
	g *graph.RoadGraph
	r *config.RuntimeConfig
}

func (c *testContext) Clock() *clock.Clock { return nil }
func (c *testContext) Graph() *graph.RoadGraph { return c.g }
func (c *testContext) SignalManager() entity.ISignalManager { return nil }
func (c *testContext) CaTrafficManager() entity.ICaTrafficManager { return nil }
func (c *testContext) AgentManager() entity.IAgentManager { return nil }
func (c *testContext) RuntimeConfig() *config.RuntimeConfig { return c.r }

// 一个十字路口（度4）加一个途中节点（度2）
func newCrossGraph() *graph.RoadGraph {
	g := graph.New()
	center := g.AddNode(geometry.Point{X: 0, Y: 0}, graph.NodeKindIntersection)
	east := g.AddNode(geometry.Point{X: 100, Y: 0}, graph.NodeKindEndpoint)
	west := g.AddNode(geometry.Point{X: -100, Y: 0}, graph.NodeKindEndpoint)
	north := g.AddNode(geometry.Point{X: 0, Y: 100}, graph.NodeKindEndpoint)
	south := g.AddNode(geometry.Point{X: 0, Y: -100}, graph.NodeKindEndpoint)
	for _, other := range []graph.NodeID{east, west, north, south} {
		g.AddEdge(center, other, []geometry.Point{g.Node(center).Position(), g.Node(other).Position()}, graph.RoadClassMajor)
	}
	return g
}

func newTestManager(g *graph.RoadGraph) *signal.SignalManager {
	r := config.NewRuntimeConfig(config.Config{
		Signal: config.Signal{Green: 12, Yellow: 3, Red: 12},
	})
	m := signal.NewManager(&testContext{g: g, r: r})
	m.Init(g)
	return m
}

func TestSignalControllerPlacement(t *testing.T) {
	g := newCrossGraph()
	m := newTestManager(g)

	// 只有度>=3的中心节点有信号灯
	assert.EqualValues(t, 1, m.Count())
	_, ok := m.Phase(graph.NodeID(0))
	assert.True(t, ok)
	_, ok = m.Phase(graph.NodeID(1))
	assert.False(t, ok)
}

func TestSignalCycle(t *testing.T) {
	g := newCrossGraph()
	m := newTestManager(g)
	center := graph.NodeID(0)

	m.Prepare()
	phase, ok := m.Phase(center)
	assert.True(t, ok)
	assert.Equal(t, entity.LightPhaseGreen, phase)

	// 绿->黄->红->绿，按相位时长推进
	m.Update(12)
	m.Prepare()
	phase, _ = m.Phase(center)
	assert.Equal(t, entity.LightPhaseYellow, phase)

	m.Update(3)
	m.Prepare()
	phase, _ = m.Phase(center)
	assert.Equal(t, entity.LightPhaseRed, phase)

	m.Update(12)
	m.Prepare()
	phase, _ = m.Phase(center)
	assert.Equal(t, entity.LightPhaseGreen, phase)
}

func TestSignalDurationProportion(t *testing.T) {
	g := newCrossGraph()
	m := newTestManager(g)
	center := graph.NodeID(0)

	// 以1秒步长跑完一个完整周期，各相位观测次数与时长成正比
	counts := make(map[entity.LightPhase]int)
	for i := 0; i < 27; i++ {
		m.Prepare()
		phase, _ := m.Phase(center)
		counts[phase]++
		m.Update(1)
	}
	assert.Equal(t, 12, counts[entity.LightPhaseGreen])
	assert.Equal(t, 3, counts[entity.LightPhaseYellow])
	assert.Equal(t, 12, counts[entity.LightPhaseRed])
}

func TestSignalSnapshotLag(t *testing.T) {
	g := newCrossGraph()
	m := newTestManager(g)
	center := graph.NodeID(0)

	m.Prepare()
	// Update只推进runtime，snapshot在下一次Prepare前保持不变
	m.Update(100)
	phase, _ := m.Phase(center)
	assert.Equal(t, entity.LightPhaseGreen, phase)
	m.Prepare()
	phase2, _ := m.Phase(center)
	assert.NotEqual(t, entity.LightPhaseGreen, phase2)
}
