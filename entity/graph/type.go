package graph

// NodeID 路网节点ID
type NodeID int32

// EdgeID 路网边ID
type EdgeID int32

// 空ID，表示"无节点/无边"
const (
	NullNode NodeID = -1
	NullEdge EdgeID = -1
)

// NodeKind 节点分类
type NodeKind int32

const (
	NodeKindIntersection NodeKind = iota // 交叉口
	NodeKindEndpoint                     // 路段端点
	NodeKindDeadEnd                      // 断头路
)

func (k NodeKind) String() string {
	switch k {
	case NodeKindIntersection:
		return "intersection"
	case NodeKindEndpoint:
		return "endpoint"
	case NodeKindDeadEnd:
		return "deadend"
	default:
		return "unknown"
	}
}

// RoadClass 道路等级
// 说明：等级决定道路宽度、车道数与限速倍率
type RoadClass int32

const (
	RoadClassHighway RoadClass = iota // 高速路
	RoadClassMajor                    // 主干道
	RoadClassMinor                    // 次干道
	RoadClassAlley                    // 小巷（单行）
)

func (c RoadClass) String() string {
	switch c {
	case RoadClassHighway:
		return "highway"
	case RoadClassMajor:
		return "major"
	case RoadClassMinor:
		return "minor"
	case RoadClassAlley:
		return "alley"
	default:
		return "unknown"
	}
}

// CaLaneCounts 获取该等级道路的元胞自动机车道数
// 功能：返回正向/反向车道数
// 说明：小巷为单行道，只有正向车道
func (c RoadClass) CaLaneCounts() (forward, backward int) {
	switch c {
	case RoadClassHighway:
		return 3, 3
	case RoadClassMajor:
		return 2, 2
	case RoadClassMinor:
		return 1, 1
	case RoadClassAlley:
		return 1, 0
	default:
		log.Panicf("bad road class %d", c)
		return 0, 0
	}
}
