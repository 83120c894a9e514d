package catraffic_test

import (
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/clock"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/catraffic"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/graph"
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

// A-B-C路径图，两条Major边，各100单位长
func newPathGraph() *graph.RoadGraph {
	g := graph.New()
	a := g.AddNode(geometry.Point{X: 0, Y: 0}, graph.NodeKindEndpoint)
	b := g.AddNode(geometry.Point{X: 100, Y: 0}, graph.NodeKindIntersection)
	c := g.AddNode(geometry.Point{X: 200, Y: 0}, graph.NodeKindEndpoint)
	g.AddEdge(a, b, []geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}, graph.RoadClassMajor)
	g.AddEdge(b, c, []geometry.Point{{X: 100, Y: 0}, {X: 200, Y: 0}}, graph.RoadClassMajor)
	return g
}

func newTestManager(g *graph.RoadGraph, traffic config.Traffic) *catraffic.CaTrafficManager {
	// 直接构造运行时配置，测试完全控制所有旋钮
	r := &config.RuntimeConfig{Traffic: traffic}
	m := catraffic.NewManager(&testContext{g: g, r: r})
	m.Init(g)
	return m
}

// 确定性场景配置：无初始车辆、无随机慢化、无出生消亡
func quietTraffic() config.Traffic {
	return config.Traffic{
		CellSize:     10,
		MaxVelocity:  5,
		SlowdownProb: 0,
		InitDensity:  0,
		SpawnProb:    0,
		DespawnProb:  0,
		Seed:         1,
	}
}

func TestNaSchSingleVehicleTrace(t *testing.T) {
	g := newPathGraph()
	m := newTestManager(g, quietTraffic())

	lane := m.Get(graph.EdgeID(0)).Lanes()[0]
	assert.Equal(t, 10, lane.Len())
	assert.True(t, lane.Spawn(0, 2))

	// 加速到3，前方无车不受间距约束，无随机慢化，前进3格
	m.Update()
	assert.EqualValues(t, 3, lane.Cells()[3])
	assert.EqualValues(t, 1, lane.VehicleCount())

	// 此后加速到上限5并回绕：累计位移3+4+5*8=47
	for i := 0; i < 9; i++ {
		m.Update()
	}
	assert.EqualValues(t, 5, lane.Cells()[47%10])
	assert.EqualValues(t, 1, lane.VehicleCount())
}

func TestCaVehicleConservation(t *testing.T) {
	g := newPathGraph()
	traffic := quietTraffic()
	traffic.InitDensity = 0.3
	traffic.SlowdownProb = 0.3
	m := newTestManager(g, traffic)

	m.Prepare()
	before := m.Stats().VehicleCount
	assert.Greater(t, before, int32(0))

	// 无出生消亡时每次tick车辆数守恒
	for i := 0; i < 50; i++ {
		m.Update()
		m.Prepare()
		assert.Equal(t, before, m.Stats().VehicleCount)
	}
}

func TestCaBoundedVelocityAndNoCollision(t *testing.T) {
	g := newPathGraph()
	traffic := quietTraffic()
	traffic.InitDensity = 0.5
	traffic.SlowdownProb = 0.3
	traffic.SpawnProb = 0.5
	traffic.DespawnProb = 0.2
	traffic.TargetDensity = 0.5
	m := newTestManager(g, traffic)

	for i := 0; i < 100; i++ {
		m.Update()
		for _, s := range []graph.EdgeID{0, 1} {
			for _, lane := range m.Get(s).Lanes() {
				for _, c := range lane.Cells() {
					// 每个元胞为空或速度在[0, max]内，间距约束保证无碰撞
					if c >= 0 {
						assert.LessOrEqual(t, c, int8(traffic.MaxVelocity))
					} else {
						assert.EqualValues(t, -1, c)
					}
				}
			}
		}
	}
}

// preGap 计算pre快照中元胞i上车辆与前车的间距（空元胞数，支持回绕）
func preGap(pre []int8, i int) int {
	n := len(pre)
	for gap := 0; gap < n-1; gap++ {
		if pre[(i+1+gap)%n] != -1 {
			return gap
		}
	}
	return n - 1
}

func TestCaGapClampNoPassThrough(t *testing.T) {
	g := newPathGraph()
	m := newTestManager(g, quietTraffic())
	lane := m.Get(graph.EdgeID(0)).Lanes()[0]

	// 快车在慢车正后方：加速被间距压制，只能跟进到慢车后一格，不得穿越
	assert.True(t, lane.Spawn(0, 5))
	assert.True(t, lane.Spawn(2, 0))
	m.Update()
	assert.EqualValues(t, 1, lane.Cells()[1])
	assert.EqualValues(t, 1, lane.Cells()[3])
	assert.EqualValues(t, 2, lane.VehicleCount())
}

func TestCaRealizedVelocityWithinGap(t *testing.T) {
	g := newPathGraph()
	traffic := quietTraffic()
	traffic.InitDensity = 0.4
	traffic.SlowdownProb = 0.3
	m := newTestManager(g, traffic)

	for tick := 0; tick < 50; tick++ {
		pres := make(map[graph.EdgeID][][]int8)
		for _, id := range []graph.EdgeID{0, 1} {
			for _, lane := range m.Get(id).Lanes() {
				pres[id] = append(pres[id], append([]int8(nil), lane.Cells()...))
			}
		}
		m.Update()
		for _, id := range []graph.EdgeID{0, 1} {
			for li, lane := range m.Get(id).Lanes() {
				pre := pres[id][li]
				n := lane.Len()
				for j, v := range lane.Cells() {
					if v < 0 {
						continue
					}
					// 位移等于tick后速度：出发元胞必须在tick前被占用，
					// 且速度不超过tick前与前车的间距，车辆无法穿越前车
					src := (j - int(v) + n) % n
					assert.NotEqual(t, int8(-1), pre[src])
					assert.LessOrEqual(t, int(v), preGap(pre, src))
				}
			}
		}
	}
}

func TestCaSeedDeterminism(t *testing.T) {
	traffic := quietTraffic()
	traffic.InitDensity = 0.2
	traffic.SlowdownProb = 0.3
	traffic.SpawnProb = 0.3
	traffic.DespawnProb = 0.2
	traffic.TargetDensity = 0.3

	m1 := newTestManager(newPathGraph(), traffic)
	m2 := newTestManager(newPathGraph(), traffic)
	for i := 0; i < 30; i++ {
		m1.Update()
		m2.Update()
	}
	for _, id := range []graph.EdgeID{0, 1} {
		lanes1, lanes2 := m1.Get(id).Lanes(), m2.Get(id).Lanes()
		assert.Equal(t, len(lanes1), len(lanes2))
		for i := range lanes1 {
			assert.Equal(t, lanes1[i].Cells(), lanes2[i].Cells())
		}
	}
}

func TestCaShortEdgeSkipped(t *testing.T) {
	g := graph.New()
	a := g.AddNode(geometry.Point{X: 0, Y: 0}, graph.NodeKindEndpoint)
	b := g.AddNode(geometry.Point{X: 12, Y: 0}, graph.NodeKindEndpoint)
	g.AddEdge(a, b, []geometry.Point{{X: 0, Y: 0}, {X: 12, Y: 0}}, graph.RoadClassMinor)
	m := newTestManager(g, quietTraffic())

	// 12单位长、元胞10单位，只容得下1个元胞，不建元胞路段
	_, err := m.GetOrError(graph.EdgeID(0))
	assert.Error(t, err)
	m.Prepare()
	assert.EqualValues(t, 0, m.Stats().Capacity)
}

func TestCaStatsClassification(t *testing.T) {
	g := newPathGraph()
	m := newTestManager(g, quietTraffic())

	// 边0的正向车道放8辆车：Major为2+2车道，容量40，密度0.2
	// 再给反向车道补8辆，密度0.4>0.3为拥堵；边1保持空为畅通
	s := m.Get(graph.EdgeID(0))
	for i := 0; i < 8; i++ {
		assert.True(t, s.Lanes()[0].Spawn(i, 1))
		assert.True(t, s.Lanes()[1].Spawn(i, 2))
	}
	m.Update()
	m.Prepare()

	stats := m.Stats()
	assert.EqualValues(t, 16, stats.VehicleCount)
	assert.EqualValues(t, 80, stats.Capacity)
	assert.InDelta(t, 0.2, stats.AvgDensity, 1e-9)
	// 平均速度对全网车辆求均值：每条占用车道只有队尾一辆车
	// 能以速度2前进，其余被间距压制为0，16辆车共计速度4
	assert.InDelta(t, 0.25, stats.AvgVelocity, 1e-9)
	assert.EqualValues(t, 1, stats.Congested)
	assert.EqualValues(t, 1, stats.FreeFlow)
}
