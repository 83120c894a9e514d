package catraffic

import (
	"fmt"

	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/graph"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/randengine"
)

// CaRoadSegment 元胞自动机路段
// 功能：一条路网边对应的元胞车道组，按道路等级确定正反向车道数
// 说明：每个路段持有独立的随机数引擎（基础种子+边ID派生），
// 路段间的并行推进因此保持确定性；车道集合构建后不再变化
type CaRoadSegment struct {
	edge  graph.EdgeID
	class graph.RoadClass
	lanes []*CaLane // 正向车道在前，反向车道在后

	generator *randengine.Engine
}

// newCaRoadSegment 创建并初始化一个新的CaRoadSegment实例
// 功能：按道路等级创建正反向车道并播撒初始车辆
// 参数：edge-路网边，cellCount-每条车道的元胞数，c-交通配置
// 说明：初始密度由init_density控制，车辆初速随机
func newCaRoadSegment(edge *graph.RoadEdge, cellCount int, c config.Traffic) *CaRoadSegment {
	forward, backward := edge.Class().CaLaneCounts()
	s := &CaRoadSegment{
		edge:      edge.ID(),
		class:     edge.Class(),
		lanes:     make([]*CaLane, 0, forward+backward),
		generator: randengine.New(c.Seed + uint64(edge.ID())),
	}
	for i := 0; i < forward+backward; i++ {
		lane := newCaLane(cellCount)
		for j := range lane.cells {
			if s.generator.PTrue(c.InitDensity) {
				lane.cells[j] = int8(s.generator.Intn(int(c.MaxVelocity) + 1))
			}
		}
		s.lanes = append(s.lanes, lane)
	}
	return s
}

func (s *CaRoadSegment) String() string {
	return fmt.Sprintf("CaRoadSegment{edge=%d, %v, %d lanes x %d cells}", s.edge, s.class, len(s.lanes), s.CellCount())
}

// Edge 获取所属边ID
func (s *CaRoadSegment) Edge() graph.EdgeID {
	return s.edge
}

// Lanes 获取车道列表
func (s *CaRoadSegment) Lanes() []*CaLane {
	return s.lanes
}

// CellCount 获取每条车道的元胞数
func (s *CaRoadSegment) CellCount() int {
	if len(s.lanes) == 0 {
		return 0
	}
	return s.lanes[0].Len()
}

// Capacity 获取路段元胞总容量
func (s *CaRoadSegment) Capacity() int32 {
	var n int32
	for _, l := range s.lanes {
		n += int32(l.Len())
	}
	return n
}

// VehicleCount 统计路段上的车辆总数
func (s *CaRoadSegment) VehicleCount() int32 {
	var n int32
	for _, l := range s.lanes {
		n += l.VehicleCount()
	}
	return n
}

// Density 获取路段密度（车辆数/容量）
func (s *CaRoadSegment) Density() float64 {
	capacity := s.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(s.VehicleCount()) / float64(capacity)
}

// update 推进路段一次tick
// 功能：逐车道执行NaSch步进，然后按出生/消亡策略调节车流量
// 参数：c-交通配置
// 算法说明：
// 1. 每条车道基于tick前快照做NaSch步进
// 2. 路段密度低于target_density时，各车道以spawn_prob概率
//    在入口元胞放入一辆初速随机的车
// 3. 各车道以despawn_prob概率移除出口元胞上的车
// 说明：车道顺序遍历且只使用本路段的随机数引擎，
// 保证固定种子下的结果与调度顺序无关
func (s *CaRoadSegment) update(c config.Traffic) {
	for _, l := range s.lanes {
		l.step(s.generator, c.MaxVelocity, c.SlowdownProb)
	}
	belowTarget := s.Density() < c.TargetDensity
	for _, l := range s.lanes {
		if belowTarget && s.generator.PTrue(c.SpawnProb) {
			l.Spawn(0, int8(s.generator.Intn(int(c.MaxVelocity)+1)))
		}
		if s.generator.PTrue(c.DespawnProb) {
			l.Despawn(l.Len() - 1)
		}
	}
}
