package graph

import (
	"fmt"
	"math"
	"sort"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/samber/lo"
)

// RoadEdge 路段实体
// 功能：表示路网中的一条路段，携带折线几何、道路等级与派生长度
// 说明：长度为折线弧长（非端点欧氏距离），构建时计算一次后不可变
type RoadEdge struct {
	id           EdgeID
	a, b         NodeID
	class        RoadClass
	crossesWater bool

	line           []geometry.Point             // 折线路径点
	lineLengths    []float64                    // 折线各点对应的累计长度
	lineDirections []geometry.PolylineDirection // 折线各段方向（atan2）
	length         float64                      // 弧长
}

// newRoadEdge 创建并初始化一个新的RoadEdge实例
// 功能：根据折线路径点计算累计长度与方向
// 说明：退化折线（少于2个点）长度为0，方向列表为空
func newRoadEdge(id EdgeID, a, b NodeID, points []geometry.Point, class RoadClass, crossesWater bool) *RoadEdge {
	e := &RoadEdge{
		id:           id,
		a:            a,
		b:            b,
		class:        class,
		crossesWater: crossesWater,
		line:         points,
	}
	if len(points) >= 2 {
		e.lineLengths = geometry.GetPolylineLengths2D(e.line)
		e.length = e.lineLengths[len(e.lineLengths)-1]
		e.lineDirections = geometry.GetPolylineDirections(e.line)
	} else {
		e.lineLengths = []float64{0}
		e.length = 0
	}
	return e
}

func (e *RoadEdge) String() string {
	return fmt.Sprintf("Edge %d (%d-%d %v)", e.id, e.a, e.b, e.class)
}

// 获取Edge ID
func (e *RoadEdge) ID() EdgeID {
	if e == nil {
		return NullEdge
	}
	return e.id
}

// 获取两端节点ID
func (e *RoadEdge) Endpoints() (a, b NodeID) {
	return e.a, e.b
}

// OtherEnd 获取给定节点在本边上的对端节点
// 功能：输入一端节点，返回另一端；节点不在本边上时返回false
func (e *RoadEdge) OtherEnd(node NodeID) (NodeID, bool) {
	switch node {
	case e.a:
		return e.b, true
	case e.b:
		return e.a, true
	default:
		return NullNode, false
	}
}

// 获取道路等级
func (e *RoadEdge) Class() RoadClass {
	return e.class
}

// 是否跨水（需要桥梁）
func (e *RoadEdge) CrossesWater() bool {
	return e.crossesWater
}

// 获取折线路径点
func (e *RoadEdge) Line() []geometry.Point {
	return e.line
}

// 获取弧长
func (e *RoadEdge) Length() float64 {
	return e.length
}

// GetDirectionByS 根据本路段s坐标计算切向角度
// 功能：定位s所在折线段并返回其方向
// 说明：退化折线返回零方向，调用方得到单位朝向的默认值
func (e *RoadEdge) GetDirectionByS(s float64) (direction geometry.PolylineDirection) {
	if len(e.lineDirections) == 0 {
		return
	}
	s = lo.Clamp(s, e.lineLengths[0], e.lineLengths[len(e.lineLengths)-1])
	if i := sort.SearchFloat64s(e.lineLengths, s); i <= 0 {
		direction = e.lineDirections[0]
	} else if i-1 < len(e.lineDirections) {
		direction = e.lineDirections[i-1]
	} else {
		direction = e.lineDirections[len(e.lineDirections)-1]
	}
	return
}

// GetPositionByS 将本路段s坐标转换为xy坐标
// 功能：在折线上按累计长度插值
// 说明：s越界时收敛到[0, length]；退化折线返回首点或零点
func (e *RoadEdge) GetPositionByS(s float64) (pos geometry.Point) {
	if len(e.line) == 0 {
		return
	}
	if len(e.line) == 1 {
		return e.line[0]
	}
	s = lo.Clamp(s, e.lineLengths[0], e.lineLengths[len(e.lineLengths)-1])
	if i := sort.SearchFloat64s(e.lineLengths, s); i <= 0 {
		pos = e.line[0]
	} else {
		sHigh, sLow := e.lineLengths[i], e.lineLengths[i-1]
		if sHigh <= sLow {
			return e.line[i-1]
		}
		k := (s - sLow) / (sHigh - sLow)
		pos = geometry.Blend(e.line[i-1], e.line[i], k)
	}
	return
}

// GetOffsetPositionByS 将本路段s坐标沿法向平移offset后转换为xy坐标
// 功能：用于将车辆/行人放置到中心线一侧（车道偏移、人行道偏移）
// 说明：offset为正表示沿行进方向右侧
func (e *RoadEdge) GetOffsetPositionByS(s, offset float64) geometry.Point {
	originalPos := e.GetPositionByS(s)
	direction := e.GetDirectionByS(s)
	unitNormal := geometry.Point{X: math.Cos(direction.Direction - math.Pi/2), Y: math.Sin(direction.Direction - math.Pi/2)}
	return geometry.Point{X: originalPos.X + unitNormal.X*offset, Y: originalPos.Y + unitNormal.Y*offset, Z: originalPos.Z}
}

// GetPositionByProgress 将归一化进度[0,1]转换为xy坐标
// 功能：进度先收敛到[0,1]再按弧长定位
func (e *RoadEdge) GetPositionByProgress(progress float64) geometry.Point {
	return e.GetPositionByS(lo.Clamp(progress, 0, 1) * e.length)
}

// GetOffsetPositionByProgress 将归一化进度[0,1]沿法向平移offset后转换为xy坐标
func (e *RoadEdge) GetOffsetPositionByProgress(progress, offset float64) geometry.Point {
	return e.GetOffsetPositionByS(lo.Clamp(progress, 0, 1)*e.length, offset)
}
