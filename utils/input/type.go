package input

import "go.mongodb.org/mongo-driver/bson"

// PointData 坐标点
type PointData struct {
	X float64 `yaml:"x" bson:"x"`
	Y float64 `yaml:"y" bson:"y"`
}

// NodeData 路网节点输入数据
// 说明：kind为空时按度数推导（度>=2为intersection，否则为endpoint）
type NodeData struct {
	ID   int32   `yaml:"id" bson:"id"`
	X    float64 `yaml:"x" bson:"x"`
	Y    float64 `yaml:"y" bson:"y"`
	Kind string  `yaml:"kind,omitempty" bson:"kind,omitempty"` // intersection/endpoint/deadend
}

// EdgeData 路段输入数据，两端引用节点ID
// 说明：points为空时取两端节点连线
type EdgeData struct {
	A      int32       `yaml:"a" bson:"a"`
	B      int32       `yaml:"b" bson:"b"`
	Class  string      `yaml:"class,omitempty" bson:"class,omitempty"` // highway/major/minor/alley
	Bridge bool        `yaml:"bridge,omitempty" bson:"bridge,omitempty"`
	Points []PointData `yaml:"points,omitempty" bson:"points,omitempty"`
}

// SegmentData 裸折线路段输入数据
// 说明：不引用节点ID，两端坐标经吸附解析为节点
type SegmentData struct {
	Class  string      `yaml:"class,omitempty" bson:"class,omitempty"`
	Bridge bool        `yaml:"bridge,omitempty" bson:"bridge,omitempty"`
	Points []PointData `yaml:"points" bson:"points"`
}

// MapData 路网输入数据
type MapData struct {
	Nodes    []NodeData    `yaml:"nodes" bson:"nodes"`
	Edges    []EdgeData    `yaml:"edges" bson:"edges"`
	Segments []SegmentData `yaml:"segments,omitempty" bson:"segments,omitempty"`
}

// classDocument MongoDB中带类别标签的文档
type classDocument struct {
	Class string   `bson:"class"`
	Data  bson.Raw `bson:"data"`
}
