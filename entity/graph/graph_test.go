package graph_test

import (
	"math"
	"testing"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/graph"
)

func TestAddNodeAndEdge(t *testing.T) {
	g := graph.New()
	a := g.AddNode(geometry.Point{X: 0, Y: 0}, graph.NodeKindIntersection)
	b := g.AddNode(geometry.Point{X: 100, Y: 0}, graph.NodeKindEndpoint)
	e := g.AddEdge(a, b, []geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}, graph.RoadClassMajor)

	assert.Equal(t, 2, g.NodeCount())
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, graph.RoadClassMajor, g.Edge(e).Class())
	assert.False(t, g.Edge(e).CrossesWater())
	assert.Equal(t, 1, g.NodeDegree(a))
	assert.Equal(t, 1, g.NodeDegree(b))

	other, ok := g.Edge(e).OtherEnd(a)
	assert.True(t, ok)
	assert.Equal(t, b, other)
	_, ok = g.Edge(e).OtherEnd(graph.NodeID(99))
	assert.False(t, ok)
}

func TestArcLengthNotEuclidean(t *testing.T) {
	g := graph.New()
	a := g.AddNode(geometry.Point{X: 0, Y: 0}, graph.NodeKindEndpoint)
	b := g.AddNode(geometry.Point{X: 100, Y: 0}, graph.NodeKindEndpoint)
	// 折线绕行：0,0 -> 50,50 -> 100,0
	e := g.AddEdge(a, b, []geometry.Point{{X: 0, Y: 0}, {X: 50, Y: 50}, {X: 100, Y: 0}}, graph.RoadClassMinor)

	want := 2 * math.Hypot(50, 50)
	assert.InDelta(t, want, g.Edge(e).Length(), 1e-9)
}

func TestFindNearestDeterministicTies(t *testing.T) {
	g := graph.New()
	a := g.AddNode(geometry.Point{X: -10, Y: 0}, graph.NodeKindEndpoint)
	g.AddNode(geometry.Point{X: 10, Y: 0}, graph.NodeKindEndpoint)

	// 等距时返回先加入（ID较小）的节点
	id, ok := g.FindNearest(geometry.Point{X: 0, Y: 0}, 100)
	assert.True(t, ok)
	assert.Equal(t, a, id)

	_, ok = g.FindNearest(geometry.Point{X: 0, Y: 1000}, 100)
	assert.False(t, ok)
}

func TestSnapOrCreatePromotion(t *testing.T) {
	g := graph.New()
	a := g.AddNode(geometry.Point{X: 0, Y: 0}, graph.NodeKindEndpoint)

	// 吸附距离内命中：复用节点并升级Endpoint为Intersection
	id := g.SnapOrCreate(geometry.Point{X: 3, Y: 0}, 10, graph.NodeKindEndpoint)
	assert.Equal(t, a, id)
	assert.Equal(t, graph.NodeKindIntersection, g.Node(a).Kind())

	// 吸附距离外：新建节点
	id2 := g.SnapOrCreate(geometry.Point{X: 50, Y: 0}, 10, graph.NodeKindDeadEnd)
	assert.NotEqual(t, a, id2)
	assert.Equal(t, graph.NodeKindDeadEnd, g.Node(id2).Kind())
	assert.Equal(t, 2, g.NodeCount())

	// 命中非Endpoint节点不改变分类
	id3 := g.SnapOrCreate(geometry.Point{X: 51, Y: 1}, 10, graph.NodeKindEndpoint)
	assert.Equal(t, id2, id3)
	assert.Equal(t, graph.NodeKindDeadEnd, g.Node(id2).Kind())
}

func TestIncidentEdgesAndFindEdge(t *testing.T) {
	g := graph.New()
	a := g.AddNode(geometry.Point{X: 0, Y: 0}, graph.NodeKindIntersection)
	b := g.AddNode(geometry.Point{X: 100, Y: 0}, graph.NodeKindIntersection)
	c := g.AddNode(geometry.Point{X: 0, Y: 100}, graph.NodeKindEndpoint)
	e1 := g.AddEdge(a, b, []geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}, graph.RoadClassMajor)
	e2 := g.AddBridgeEdge(a, c, []geometry.Point{{X: 0, Y: 0}, {X: 0, Y: 100}}, graph.RoadClassMinor)

	assert.ElementsMatch(t, []graph.EdgeID{e1, e2}, g.IncidentEdges(a))
	assert.True(t, g.Edge(e2).CrossesWater())

	found, ok := g.FindEdge(b, a)
	assert.True(t, ok)
	assert.Equal(t, e1, found)
	_, ok = g.FindEdge(b, c)
	assert.False(t, ok)

	_, err := g.EdgeOrError(graph.EdgeID(42))
	assert.Error(t, err)
	_, err = g.NodeOrError(graph.NodeID(42))
	assert.Error(t, err)
}

func TestEdgePositionAndOffset(t *testing.T) {
	g := graph.New()
	a := g.AddNode(geometry.Point{X: 0, Y: 0}, graph.NodeKindEndpoint)
	b := g.AddNode(geometry.Point{X: 100, Y: 0}, graph.NodeKindEndpoint)
	e := g.Edge(g.AddEdge(a, b, []geometry.Point{{X: 0, Y: 0}, {X: 100, Y: 0}}, graph.RoadClassMajor))

	mid := e.GetPositionByProgress(0.5)
	assert.InDelta(t, 50, mid.X, 1e-9)
	assert.InDelta(t, 0, mid.Y, 1e-9)

	// 进度越界收敛到[0,1]
	end := e.GetPositionByProgress(1.5)
	assert.InDelta(t, 100, end.X, 1e-9)

	// 沿+x行进时法向偏移在-y侧（行进方向右侧）
	off := e.GetOffsetPositionByProgress(0.5, 2)
	assert.InDelta(t, 50, off.X, 1e-9)
	assert.InDelta(t, -2, off.Y, 1e-9)

	dir := e.GetDirectionByS(50)
	assert.InDelta(t, 0, dir.Direction, 1e-9)
}
