package input_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/graph"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/input"
)

const testMapYAML = `nodes:
  - {id: 1, x: 0, y: 0}
  - {id: 2, x: 100, y: 0}
  - {id: 3, x: 200, y: 0, kind: deadend}
edges:
  - {a: 1, b: 2, class: major}
  - {a: 2, b: 3, class: minor}
segments:
  - class: alley
    points:
      - {x: 102, y: 3}
      - {x: 100, y: 100}
  - class: highway
    bridge: true
    points:
      - {x: 0, y: 0}
      - {x: 0, y: -50}
      - {x: 50, y: -50}
`

func TestLoadFileAndBuildGraph(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yml")
	require.NoError(t, os.WriteFile(path, []byte(testMapYAML), 0o644))

	data := input.Load(config.Input{Map: config.InputPath{File: path}})
	assert.Len(t, data.Nodes, 3)
	assert.Len(t, data.Edges, 2)
	assert.Len(t, data.Segments, 2)

	g := input.BuildGraph(data, 10)

	// 3个显式节点+第二条裸折线的两个新端点（首点吸附到节点1）
	assert.Equal(t, 5, g.NodeCount())
	assert.Equal(t, 4, g.EdgeCount())

	// 未声明分类的节点按度数推导：输入节点2度2为intersection，
	// 输入节点3保持声明的deadend
	assert.Equal(t, graph.NodeKindIntersection, g.Node(graph.NodeID(1)).Kind())
	assert.Equal(t, graph.NodeKindDeadEnd, g.Node(graph.NodeID(2)).Kind())

	// 第一条裸折线首点(102,3)在吸附距离内命中输入节点2，末点新建
	e, ok := g.FindEdge(graph.NodeID(1), graph.NodeID(3))
	assert.True(t, ok)
	assert.Equal(t, graph.RoadClassAlley, g.Edge(e).Class())

	// 第二条裸折线：首点命中节点1（升级为intersection），末点新建
	e2, ok := g.FindEdge(graph.NodeID(0), graph.NodeID(4))
	assert.True(t, ok)
	assert.True(t, g.Edge(e2).CrossesWater())
	assert.Equal(t, graph.RoadClassHighway, g.Edge(e2).Class())
	assert.Equal(t, graph.NodeKindIntersection, g.Node(graph.NodeID(0)).Kind())
	// 折线弧长：50+50=100
	assert.InDelta(t, 100, g.Edge(e2).Length(), 1e-9)
}

func TestBuildGraphMissingNode(t *testing.T) {
	data := &input.MapData{
		Nodes: []input.NodeData{{ID: 1, X: 0, Y: 0}},
		Edges: []input.EdgeData{{A: 1, B: 99}},
	}
	assert.Panics(t, func() { input.BuildGraph(data, 10) })
}
