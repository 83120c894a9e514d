package signal

import (
	"fmt"

	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/graph"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/config"
)

// tlRuntime 信号灯运行时数据结构
// 功能：存储当前相位与相位剩余时间
type tlRuntime struct {
	phase     entity.LightPhase
	remaining float64
}

// TrafficLightController 定周期信号灯控制器
// 功能：实现绿->黄->红循环的单路口信控，所有进口道共享同一相位
// 说明：控制器之间无协调；snapshot用于输出，runtime用于推进，
// 二者在Prepare中同步，保证Update并行执行时读写不冲突
type TrafficLightController struct {
	node      graph.NodeID
	durations [3]float64 // 各相位时长（秒），下标为LightPhase

	snapshot tlRuntime // snapshot，用于保存输出的数据
	runtime  tlRuntime // 运行时数据
}

// newTrafficLightController 创建并初始化一个新的信号灯控制器
// 功能：根据配置设置各相位时长，初始相位为绿灯且满时长
// 参数：node-所属节点ID，c-信控配置
func newTrafficLightController(node graph.NodeID, c config.Signal) *TrafficLightController {
	t := &TrafficLightController{
		node: node,
		durations: [3]float64{
			entity.LightPhaseGreen:  c.Green,
			entity.LightPhaseYellow: c.Yellow,
			entity.LightPhaseRed:    c.Red,
		},
	}
	t.runtime = tlRuntime{phase: entity.LightPhaseGreen, remaining: t.durations[entity.LightPhaseGreen]}
	t.snapshot = t.runtime
	return t
}

func (t *TrafficLightController) String() string {
	return fmt.Sprintf("TrafficLight{node=%d, phase=%v, remaining=%.1f}", t.node, t.snapshot.phase, t.snapshot.remaining)
}

// Node 获取控制器所属节点ID
func (t *TrafficLightController) Node() graph.NodeID {
	return t.node
}

// Phase 获取snapshot相位
// 说明：智能体在Update并行阶段读取该值
func (t *TrafficLightController) Phase() entity.LightPhase {
	return t.snapshot.phase
}

// prepare 准备阶段
// 功能：将运行时数据写入snapshot
func (t *TrafficLightController) prepare() {
	t.snapshot = t.runtime
}

// update 更新阶段，推进相位计时
// 功能：累减剩余时间，耗尽时切换到下一相位并补满该相位时长
// 参数：dt-时间步长
// 说明：dt大于剩余时间时会连续跨越多个相位，保证计时不漂移
func (t *TrafficLightController) update(dt float64) {
	t.runtime.remaining -= dt
	for t.runtime.remaining <= 0 {
		t.runtime.phase = nextPhase(t.runtime.phase)
		t.runtime.remaining += t.durations[t.runtime.phase]
	}
}

// nextPhase 获取循环中的下一相位
func nextPhase(p entity.LightPhase) entity.LightPhase {
	switch p {
	case entity.LightPhaseGreen:
		return entity.LightPhaseYellow
	case entity.LightPhaseYellow:
		return entity.LightPhaseRed
	case entity.LightPhaseRed:
		return entity.LightPhaseGreen
	default:
		log.Panicf("bad light phase %d", p)
		return entity.LightPhaseGreen
	}
}
