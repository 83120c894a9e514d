package signal

import (
	"git.fiblab.net/general/common/v2/parallel"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/graph"
)

// 信控管理器
type SignalManager struct {
	ctx entity.ITaskContext

	data        map[graph.NodeID]*TrafficLightController
	controllers []*TrafficLightController
}

// NewManager 创建信控管理器实例
// 参数：ctx-任务上下文
func NewManager(ctx entity.ITaskContext) *SignalManager {
	return &SignalManager{
		ctx:         ctx,
		data:        make(map[graph.NodeID]*TrafficLightController),
		controllers: make([]*TrafficLightController, 0),
	}
}

// Init 初始化所有信号灯控制器
// 功能：为路网中每个度>=3的节点创建一个信号灯控制器
// 参数：g-路网图
// 说明：控制器集合在初始化后不再变化
func (m *SignalManager) Init(g *graph.RoadGraph) {
	c := m.ctx.RuntimeConfig().Signal
	for _, node := range g.Nodes() {
		if g.NodeDegree(node.ID()) >= 3 {
			m.controllers = append(m.controllers, newTrafficLightController(node.ID(), c))
		}
	}
	m.data = lo.SliceToMap(m.controllers, func(t *TrafficLightController) (graph.NodeID, *TrafficLightController) {
		return t.node, t
	})
	log.Infof("create %d traffic light controllers", len(m.controllers))
}

// Phase 查询节点的snapshot信号相位
// 功能：输入节点ID，返回该节点信号灯的当前相位
// 返回：相位与是否存在信号灯
// 说明：无信号灯的节点返回false，调用方视为自由通行
func (m *SignalManager) Phase(node graph.NodeID) (entity.LightPhase, bool) {
	if t, ok := m.data[node]; ok {
		return t.Phase(), true
	}
	return entity.LightPhaseGreen, false
}

// Count 获取信号灯控制器数量
func (m *SignalManager) Count() int32 {
	return int32(len(m.controllers))
}

// Prepare 准备阶段，同步所有控制器的snapshot
// 说明：使用并行处理提高性能
func (m *SignalManager) Prepare() {
	parallel.GoFor(m.controllers, func(t *TrafficLightController) { t.prepare() })
}

// Update 更新阶段，推进所有控制器的相位计时
// 参数：dt-时间步长
// 说明：使用并行处理提高性能
func (m *SignalManager) Update(dt float64) {
	parallel.GoFor(m.controllers, func(t *TrafficLightController) { t.update(dt) })
}
