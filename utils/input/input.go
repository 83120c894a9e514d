package input

import (
	"context"
	"os"

	"git.fiblab.net/general/common/v2/geometry"
	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/graph"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v2"
)

// Load 加载路网输入数据
// 功能：根据配置从YAML文件或MongoDB集合加载MapData
// 参数：c-输入配置
// 返回：加载完成的路网输入数据
// 说明：配置了文件路径时优先走文件，否则连接MongoDB；
// 两条路径失败都视为启动致命错误
func Load(c config.Input) *MapData {
	if c.Map.File != "" {
		return loadFile(c.Map.File)
	}
	if c.URI == "" {
		log.Panicf("no input source: neither map file nor mongo uri is set")
	}
	return loadMongo(c)
}

// loadFile 从YAML文件加载
func loadFile(path string) *MapData {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Panicf("failed to read map file: %v", err)
	}
	var data MapData
	if err := yaml.UnmarshalStrict(raw, &data); err != nil {
		log.Panicf("failed to parse map file: %v", err)
	}
	log.Infof("load map from file %s: %d nodes, %d edges, %d segments", path, len(data.Nodes), len(data.Edges), len(data.Segments))
	return &data
}

// loadMongo 从MongoDB集合加载
// 功能：遍历集合中带类别标签的文档（{"class": "node"|"edge"|"segment",
// "data": {...}}），按类别拆解到MapData
func loadMongo(c config.Input) *MapData {
	client := mongoutil.NewClient(c.URI)
	defer client.Disconnect(context.Background())
	coll := client.Database(c.Map.DB).Collection(c.Map.Col)

	log.Infof("start fetching from %s.%s", c.Map.DB, c.Map.Col)
	cursor, err := coll.Find(context.Background(), bson.D{})
	if err != nil {
		log.Panicf("failed to query %s.%s: %v", c.Map.DB, c.Map.Col, err)
	}
	defer cursor.Close(context.Background())

	data := &MapData{}
	for cursor.Next(context.Background()) {
		var doc classDocument
		if err := cursor.Decode(&doc); err != nil {
			log.Panicf("failed to decode document: %v", err)
		}
		switch doc.Class {
		case "node":
			var node NodeData
			if err := bson.Unmarshal(doc.Data, &node); err != nil {
				log.Panicf("failed to decode node: %v", err)
			}
			data.Nodes = append(data.Nodes, node)
		case "edge":
			var edge EdgeData
			if err := bson.Unmarshal(doc.Data, &edge); err != nil {
				log.Panicf("failed to decode edge: %v", err)
			}
			data.Edges = append(data.Edges, edge)
		case "segment":
			var segment SegmentData
			if err := bson.Unmarshal(doc.Data, &segment); err != nil {
				log.Panicf("failed to decode segment: %v", err)
			}
			data.Segments = append(data.Segments, segment)
		default:
			log.Warnf("unknown document class %q, skipped", doc.Class)
		}
	}
	if err := cursor.Err(); err != nil {
		log.Panicf("cursor error: %v", err)
	}
	log.Infof("finish fetching from %s.%s: %d nodes, %d edges, %d segments", c.Map.DB, c.Map.Col, len(data.Nodes), len(data.Edges), len(data.Segments))
	return data
}

// BuildGraph 根据输入数据构建路网图
// 功能：先建节点与显式边，再把裸折线路段经端点吸附接入图中
// 参数：data-路网输入数据，snapDistance-裸折线端点的吸附距离
// 返回：构建完成的路网图
// 算法说明：
// 1. 统计显式边对节点的引用次数，未声明分类的节点按度数推导
//   （度>=2为交叉口，否则为路段端点）
// 2. 添加所有节点并建立输入ID->图内ID映射
// 3. 显式边经utils.Find解析两端，缺失ID视为输入致命错误；
//    无折线的边取两端连线
// 4. 裸折线路段的首末点经SnapOrCreate解析（命中已有节点时复用
//    并升级，未命中时新建），再作为普通边加入
func BuildGraph(data *MapData, snapDistance float64) *graph.RoadGraph {
	g := graph.New()

	degree := make(map[int32]int)
	for _, e := range data.Edges {
		degree[e.A]++
		degree[e.B]++
	}

	nodeIDs := make(map[int32]graph.NodeID, len(data.Nodes))
	allNodeIDs := make([]graph.NodeID, 0, len(data.Nodes))
	for _, n := range data.Nodes {
		if _, ok := nodeIDs[n.ID]; ok {
			log.Panicf("duplicate node id %d in input", n.ID)
		}
		id := g.AddNode(geometry.Point{X: n.X, Y: n.Y}, parseNodeKind(n.Kind, degree[n.ID]))
		nodeIDs[n.ID] = id
		allNodeIDs = append(allNodeIDs, id)
	}

	for _, e := range data.Edges {
		ok, failed := utils.Find(nodeIDs, allNodeIDs, []int32{e.A, e.B})
		if len(failed) > 0 {
			log.Panicf("edge %d-%d references missing node ids %v", e.A, e.B, failed)
		}
		a, b := ok[0], ok[1]
		points := lo.Map(e.Points, func(p PointData, _ int) geometry.Point {
			return geometry.Point{X: p.X, Y: p.Y}
		})
		if len(points) < 2 {
			points = []geometry.Point{g.Node(a).Position(), g.Node(b).Position()}
		}
		addEdge(g, a, b, points, parseRoadClass(e.Class), e.Bridge)
	}

	for _, s := range data.Segments {
		if len(s.Points) < 2 {
			log.Warnf("segment with %d points skipped", len(s.Points))
			continue
		}
		points := lo.Map(s.Points, func(p PointData, _ int) geometry.Point {
			return geometry.Point{X: p.X, Y: p.Y}
		})
		a := g.SnapOrCreate(points[0], snapDistance, graph.NodeKindEndpoint)
		b := g.SnapOrCreate(points[len(points)-1], snapDistance, graph.NodeKindEndpoint)
		addEdge(g, a, b, points, parseRoadClass(s.Class), s.Bridge)
	}

	log.Infof("build graph: %d nodes, %d edges", g.NodeCount(), g.EdgeCount())
	return g
}

func addEdge(g *graph.RoadGraph, a, b graph.NodeID, points []geometry.Point, class graph.RoadClass, bridge bool) {
	if bridge {
		g.AddBridgeEdge(a, b, points, class)
	} else {
		g.AddEdge(a, b, points, class)
	}
}

// parseNodeKind 解析节点分类字符串
// 说明：空字符串按度数推导
func parseNodeKind(s string, degree int) graph.NodeKind {
	switch s {
	case "intersection":
		return graph.NodeKindIntersection
	case "endpoint":
		return graph.NodeKindEndpoint
	case "deadend":
		return graph.NodeKindDeadEnd
	case "":
		if degree >= 2 {
			return graph.NodeKindIntersection
		}
		return graph.NodeKindEndpoint
	default:
		log.Panicf("bad node kind %q", s)
		return graph.NodeKindEndpoint
	}
}

// parseRoadClass 解析道路等级字符串，空字符串默认次干道
func parseRoadClass(s string) graph.RoadClass {
	switch s {
	case "highway":
		return graph.RoadClassHighway
	case "major":
		return graph.RoadClassMajor
	case "minor", "":
		return graph.RoadClassMinor
	case "alley":
		return graph.RoadClassAlley
	default:
		log.Panicf("bad road class %q", s)
		return graph.RoadClassMinor
	}
}
