package catraffic

import (
	"fmt"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/graph"
)

// 拥堵/畅通判定的密度阈值
const (
	congestedDensity = 0.3
	freeFlowDensity  = 0.1
)

// 元胞自动机交通管理器
type CaTrafficManager struct {
	ctx entity.ITaskContext

	data     map[graph.EdgeID]*CaRoadSegment
	segments []*CaRoadSegment

	snapshot entity.TrafficStats // snapshot，用于保存输出的数据
	runtime  entity.TrafficStats // 运行时数据
}

// NewManager 创建元胞自动机交通管理器实例
// 参数：ctx-任务上下文
func NewManager(ctx entity.ITaskContext) *CaTrafficManager {
	return &CaTrafficManager{
		ctx:      ctx,
		data:     make(map[graph.EdgeID]*CaRoadSegment),
		segments: make([]*CaRoadSegment, 0),
	}
}

// Init 初始化所有元胞路段
// 功能：为路网中每条足够长的边创建元胞路段并播撒初始车辆
// 参数：g-路网图
// 说明：元胞数=边弧长/cell_size向下取整，不足2个元胞的边跳过
// （环形车道至少需要2个元胞才有意义）
func (m *CaTrafficManager) Init(g *graph.RoadGraph) {
	c := m.ctx.RuntimeConfig().Traffic
	skipped := 0
	for _, edge := range g.Edges() {
		cellCount := int(edge.Length() / c.CellSize)
		if cellCount < 2 {
			skipped++
			continue
		}
		m.segments = append(m.segments, newCaRoadSegment(edge, cellCount, c))
	}
	m.data = lo.SliceToMap(m.segments, func(s *CaRoadSegment) (graph.EdgeID, *CaRoadSegment) {
		return s.edge, s
	})
	m.runtime = m.computeStats()
	m.snapshot = m.runtime
	log.Infof("create %d ca road segments (%d edges too short)", len(m.segments), skipped)
}

// Get 根据边ID获取元胞路段，如果不存在则panic
// 说明：过短的边没有元胞路段
func (m *CaTrafficManager) Get(id graph.EdgeID) *CaRoadSegment {
	if s, ok := m.data[id]; !ok {
		log.Panicf("no edge %d in ca segments", id)
		return nil
	} else {
		return s
	}
}

// GetOrError 根据边ID获取元胞路段，如果不存在则返回error
func (m *CaTrafficManager) GetOrError(id graph.EdgeID) (*CaRoadSegment, error) {
	if s, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no edge %d in ca segments", id)
	} else {
		return s, nil
	}
}

// Stats 获取上一次tick的全网路况统计snapshot
func (m *CaTrafficManager) Stats() entity.TrafficStats {
	return m.snapshot
}

// Prepare 准备阶段，同步统计snapshot
func (m *CaTrafficManager) Prepare() {
	m.snapshot = m.runtime
}

// Update 更新阶段，推进一次全网元胞自动机tick
// 功能：并行推进所有路段，然后重算全网统计
// 说明：路段之间完全独立（闭环车道），并行推进无数据竞争；
// 统计写入runtime，下一次Prepare时对外可见
func (m *CaTrafficManager) Update() {
	c := m.ctx.RuntimeConfig().Traffic
	parallel.GoFor(m.segments, func(s *CaRoadSegment) { s.update(c) })
	m.runtime = m.computeStats()
}

// computeStats 汇总全网路况统计
// 算法说明：
// 1. 累加所有路段的车辆数、容量、车辆速度
// 2. 平均密度=车辆总数/总容量，平均速度=速度总和/车辆总数
// 3. 按路段密度阈值分类拥堵（>0.3）与畅通（<0.1）
func (m *CaTrafficManager) computeStats() entity.TrafficStats {
	var stats entity.TrafficStats
	var velocitySum int32
	for _, s := range m.segments {
		stats.VehicleCount += s.VehicleCount()
		stats.Capacity += s.Capacity()
		for _, l := range s.lanes {
			velocitySum += l.VelocitySum()
		}
		switch density := s.Density(); {
		case density > congestedDensity:
			stats.Congested++
		case density < freeFlowDensity:
			stats.FreeFlow++
		}
	}
	if stats.Capacity > 0 {
		stats.AvgDensity = float64(stats.VehicleCount) / float64(stats.Capacity)
	}
	if stats.VehicleCount > 0 {
		stats.AvgVelocity = float64(velocitySum) / float64(stats.VehicleCount)
	}
	return stats
}
