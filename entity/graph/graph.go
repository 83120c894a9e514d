package graph

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
)

// RoadNode 路网节点实体
// 功能：表示路网中的交叉口/端点/断头路节点
// 说明：节点分类仅在SnapOrCreate中升级（Endpoint→Intersection），
// 其余时刻不可变；由RoadGraph独占持有
type RoadNode struct {
	id   NodeID
	pos  geometry.Point
	kind NodeKind
}

func (n *RoadNode) String() string {
	return fmt.Sprintf("Node %d (%v)", n.id, n.kind)
}

// 获取Node ID
func (n *RoadNode) ID() NodeID {
	if n == nil {
		return NullNode
	}
	return n.id
}

// 获取节点坐标
func (n *RoadNode) Position() geometry.Point {
	return n.pos
}

// 获取节点分类
func (n *RoadNode) Kind() NodeKind {
	return n.kind
}

// RoadGraph 路网图
// 功能：以整数ID为引用的无向图（节点/边存放在arena数组中），
// 附带用于最近邻查询的位置索引
// 说明：模拟开始后只读共享，任何写操作仅发生在构建阶段
type RoadGraph struct {
	nodes    []*RoadNode
	edges    []*RoadEdge
	incident [][]EdgeID // 每个节点的关联边列表

	// 最近邻查询的位置索引，与nodes同序
	nodePositions []geometry.Point
}

// New 创建空路网图
func New() *RoadGraph {
	return &RoadGraph{
		nodes:         make([]*RoadNode, 0),
		edges:         make([]*RoadEdge, 0),
		incident:      make([][]EdgeID, 0),
		nodePositions: make([]geometry.Point, 0),
	}
}

// AddNode 添加节点
// 功能：向图中追加一个节点并登记到位置索引
// 参数：pos-节点坐标，kind-节点分类
// 返回：新节点ID
// 说明：总是成功
func (g *RoadGraph) AddNode(pos geometry.Point, kind NodeKind) NodeID {
	id := NodeID(len(g.nodes))
	g.nodes = append(g.nodes, &RoadNode{id: id, pos: pos, kind: kind})
	g.incident = append(g.incident, nil)
	g.nodePositions = append(g.nodePositions, pos)
	return id
}

// AddEdge 添加路段
// 功能：在两个节点之间追加一条路段，构建时计算弧长
// 参数：a/b-两端节点ID，points-折线路径点，class-道路等级
// 返回：新边ID
// 说明：除两端ID必须存在外不做其他校验
func (g *RoadGraph) AddEdge(a, b NodeID, points []geometry.Point, class RoadClass) EdgeID {
	return g.addEdge(a, b, points, class, false)
}

// AddBridgeEdge 添加跨水路段
// 功能：与AddEdge相同，但标记该路段跨水
// 说明：跨水标记由渲染与元胞自动机消费，本模块只存储
func (g *RoadGraph) AddBridgeEdge(a, b NodeID, points []geometry.Point, class RoadClass) EdgeID {
	return g.addEdge(a, b, points, class, true)
}

func (g *RoadGraph) addEdge(a, b NodeID, points []geometry.Point, class RoadClass, crossesWater bool) EdgeID {
	if !g.hasNode(a) || !g.hasNode(b) {
		log.Panicf("add edge with bad endpoints %d-%d (have %d nodes)", a, b, len(g.nodes))
	}
	id := EdgeID(len(g.edges))
	g.edges = append(g.edges, newRoadEdge(id, a, b, points, class, crossesWater))
	g.incident[a] = append(g.incident[a], id)
	g.incident[b] = append(g.incident[b], id)
	return id
}

// FindNearest 查找给定坐标附近最近的节点
// 功能：在位置索引上线性扫描，返回max_distance内最近的节点
// 返回：节点ID与是否命中
// 说明：距离相同时取先加入（ID较小）的节点，保证固定节点集合下结果确定
func (g *RoadGraph) FindNearest(pos geometry.Point, maxDistance float64) (NodeID, bool) {
	best := NullNode
	bestSq := maxDistance * maxDistance
	for i, p := range g.nodePositions {
		dx, dy := pos.X-p.X, pos.Y-p.Y
		dSq := dx*dx + dy*dy
		if dSq > bestSq {
			continue
		}
		// 严格小于：距离相同时保留先加入的节点
		if best == NullNode || dSq < bestSq {
			best = NodeID(i)
			bestSq = dSq
		}
	}
	return best, best != NullNode
}

// SnapOrCreate 将坐标吸附到已有节点或创建新节点
// 功能：在snap_distance内命中已有节点则复用，否则新建
// 参数：pos-坐标，snapDistance-吸附距离，kind-未命中时新节点的分类
// 返回：命中或新建的节点ID
// 说明：这是节点分类升级的唯一入口：命中Endpoint时升级为Intersection
func (g *RoadGraph) SnapOrCreate(pos geometry.Point, snapDistance float64, kind NodeKind) NodeID {
	if existing, ok := g.FindNearest(pos, snapDistance); ok {
		if node := g.nodes[existing]; node.kind == NodeKindEndpoint {
			node.kind = NodeKindIntersection
		}
		return existing
	}
	return g.AddNode(pos, kind)
}

// 获取节点数
func (g *RoadGraph) NodeCount() int {
	return len(g.nodes)
}

// 获取边数
func (g *RoadGraph) EdgeCount() int {
	return len(g.edges)
}

// 获取所有节点
func (g *RoadGraph) Nodes() []*RoadNode {
	return g.nodes
}

// 获取所有边
func (g *RoadGraph) Edges() []*RoadEdge {
	return g.edges
}

// Node 根据ID获取节点，如果不存在则panic
func (g *RoadGraph) Node(id NodeID) *RoadNode {
	if !g.hasNode(id) {
		log.Panicf("no id %d in graph nodes", id)
	}
	return g.nodes[id]
}

// NodeOrError 根据ID获取节点，如果不存在则返回error
func (g *RoadGraph) NodeOrError(id NodeID) (*RoadNode, error) {
	if !g.hasNode(id) {
		return nil, fmt.Errorf("no id %d in graph nodes", id)
	}
	return g.nodes[id], nil
}

// Edge 根据ID获取边，如果不存在则panic
func (g *RoadGraph) Edge(id EdgeID) *RoadEdge {
	if !g.hasEdge(id) {
		log.Panicf("no id %d in graph edges", id)
	}
	return g.edges[id]
}

// EdgeOrError 根据ID获取边，如果不存在则返回error
func (g *RoadGraph) EdgeOrError(id EdgeID) (*RoadEdge, error) {
	if !g.hasEdge(id) {
		return nil, fmt.Errorf("no id %d in graph edges", id)
	}
	return g.edges[id], nil
}

// IncidentEdges 获取节点的关联边ID列表
// 说明：返回内部切片，调用方只读
func (g *RoadGraph) IncidentEdges(id NodeID) []EdgeID {
	if !g.hasNode(id) {
		return nil
	}
	return g.incident[id]
}

// NodeDegree 获取节点的度（关联边数）
func (g *RoadGraph) NodeDegree(id NodeID) int {
	return len(g.IncidentEdges(id))
}

// FindEdge 根据端点对查找边
// 功能：返回连接两节点的第一条边
// 返回：边ID与是否命中
func (g *RoadGraph) FindEdge(a, b NodeID) (EdgeID, bool) {
	for _, id := range g.IncidentEdges(a) {
		if other, ok := g.edges[id].OtherEnd(a); ok && other == b {
			return id, true
		}
	}
	return NullEdge, false
}

func (g *RoadGraph) hasNode(id NodeID) bool {
	return id >= 0 && int(id) < len(g.nodes)
}

func (g *RoadGraph) hasEdge(id EdgeID) bool {
	return id >= 0 && int(id) < len(g.edges)
}
