package agent

import (
	"fmt"
	"math"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/graph"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/container"
)

// 信号灯停车判定的进度阈值：越过该进度视为接近路口
const signalCheckProgress = 0.7

// Navigation 导航状态记录
// 功能：描述智能体在路网上的位置与运动状态
// 说明：车辆、公交车、行人共用同一记录，差异只在消费方式
// （车辆用车道偏移，行人用人行道侧别）
type Navigation struct {
	Edge             graph.EdgeID // 当前所在边
	Forward          bool         // 是否沿a->b方向行进
	Progress         float64      // 沿边归一化进度[0,1]
	Speed            float64      // 当前速度（米/秒）
	TargetSpeed      float64      // 目标速度（米/秒）
	Destination      graph.NodeID // 正在驶向的节点
	Previous         graph.NodeID // 来源节点，用于禁止掉头
	Stopping         bool         // 是否因信号灯减速停车
	LaneOffset       float64      // 当前车道偏移（米，相对道路中心线）
	TargetLaneOffset float64      // 目标车道偏移（米）
	Side             float64      // 行人所在人行道侧别（+1/-1）
}

func (n Navigation) String() string {
	return fmt.Sprintf("Navigation{edge=%d, forward=%v, progress=%.3f, v=%.2f}", n.Edge, n.Forward, n.Progress, n.Speed)
}

// Agent 智能体实体
// 功能：路网上独立导航的个体（私家车/公交车/行人），
// 与元胞自动机聚合车流互不感知
// 说明：kind标签+统一导航记录，不做类型继承；
// 导航流水线各阶段都是对全体智能体的整趟遍历
type Agent struct {
	container.IncrementalItemBase

	ctx entity.ITaskContext

	id   int32
	kind entity.AgentKind

	nav       Navigation
	transform entity.Transform
	despawned bool
}

func (a *Agent) String() string {
	return fmt.Sprintf("Agent %d (%v, %v)", a.id, a.kind, a.nav)
}

// 获取Agent ID
func (a *Agent) ID() int32 {
	return a.id
}

// 获取Agent类型
func (a *Agent) Kind() entity.AgentKind {
	return a.kind
}

// 获取所在边ID
func (a *Agent) Edge() graph.EdgeID {
	return a.nav.Edge
}

// 获取沿边归一化进度
func (a *Agent) Progress() float64 {
	return a.nav.Progress
}

// 判断是否沿边a->b方向行进
func (a *Agent) Forward() bool {
	return a.nav.Forward
}

// 获取当前速度
func (a *Agent) Speed() float64 {
	return a.nav.Speed
}

// 判断是否处于信号灯停车状态
func (a *Agent) Stopping() bool {
	return a.nav.Stopping
}

// 获取世界坐标变换
func (a *Agent) Position() entity.Transform {
	return a.transform
}

// 判断是否已标记移除
func (a *Agent) Despawned() bool {
	return a.despawned
}

// 获取导航状态记录
func (a *Agent) Navigation() Navigation {
	return a.nav
}

// checkSignal 流水线阶段1：信号灯合规
// 功能：机动车接近路口（进度越过0.7）且目标节点信号为红/黄时
// 置位停车标志，其余情况清除标志
// 说明：行人不受信控约束；信号相位读取snapshot，
// 与信控Update并行执行无竞争
func (a *Agent) checkSignal() {
	if !a.kind.IsVehicular() {
		return
	}
	var approaching bool
	if a.nav.Forward {
		approaching = a.nav.Progress > signalCheckProgress
	} else {
		approaching = a.nav.Progress < 1-signalCheckProgress
	}
	if !approaching {
		a.nav.Stopping = false
		return
	}
	if phase, ok := a.ctx.SignalManager().Phase(a.nav.Destination); ok {
		a.nav.Stopping = phase == entity.LightPhaseRed || phase == entity.LightPhaseYellow
	} else {
		a.nav.Stopping = false
	}
}

// move 流水线阶段2：纵向运动
// 功能：按加减速度更新速度，再将位移折算为进度增量
// 参数：dt-时间步长
// 说明：停车时向0减速，否则向目标速度加速；行人匀速行走；
// 所在边查不到或长度退化时本步跳过
func (a *Agent) move(dt float64) {
	c := a.ctx.RuntimeConfig().Agent
	if a.kind.IsVehicular() {
		if a.nav.Stopping {
			a.nav.Speed = math.Max(a.nav.Speed-c.Deceleration*dt, 0)
		} else {
			a.nav.Speed = math.Min(a.nav.Speed+c.Acceleration*dt, a.nav.TargetSpeed)
		}
	} else {
		a.nav.Speed = a.nav.TargetSpeed
	}
	if a.nav.Speed <= 1e-3 {
		return
	}
	edge, err := a.ctx.Graph().EdgeOrError(a.nav.Edge)
	if err != nil || edge.Length() <= 0 {
		return
	}
	delta := a.nav.Speed * dt / edge.Length()
	if a.nav.Forward {
		a.nav.Progress = math.Min(a.nav.Progress+delta, 1)
	} else {
		a.nav.Progress = math.Max(a.nav.Progress-delta, 0)
	}
}

// atEnd 判断是否到达当前边的尽头
func (a *Agent) atEnd() bool {
	return (a.nav.Forward && a.nav.Progress >= 1) || (!a.nav.Forward && a.nav.Progress <= 0)
}

// transition 流水线阶段3：换边
// 功能：到达边尽头时在目标节点的关联边中选择下一条边并重置导航状态
// 参数：m-所属管理器（提供随机数引擎与移除入口）
// 算法说明：
// 1. 候选边=目标节点关联边去掉刚驶离的边（禁止掉头），
//    行人进一步只保留主干道/次干道
// 2. 候选为空视为断头路，标记消亡（非错误路径）
// 3. 公交车按道路等级加权抽样（高速3/主干2/其他1），其余均匀抽样
// 4. 由匹配端点推导新边行进方向，进度重置到驶入端
// 5. 机动车按新边等级重算目标速度与目标车道偏移
func (a *Agent) transition(m *AgentManager) {
	if !a.atEnd() {
		return
	}
	g := a.ctx.Graph()
	current := a.nav.Destination
	candidates := make([]graph.EdgeID, 0, 4)
	for _, id := range g.IncidentEdges(current) {
		if id == a.nav.Edge {
			continue
		}
		if a.kind == entity.AgentKindPedestrian {
			if class := g.Edge(id).Class(); class != graph.RoadClassMajor && class != graph.RoadClassMinor {
				continue
			}
		}
		candidates = append(candidates, id)
	}
	if len(candidates) == 0 {
		// 断头路，就地消亡，等待管理器补充新个体
		m.markDespawned(a)
		return
	}
	var next graph.EdgeID
	if a.kind == entity.AgentKindBus {
		weights := lo.Map(candidates, func(id graph.EdgeID, _ int) float64 {
			switch g.Edge(id).Class() {
			case graph.RoadClassHighway:
				return 3
			case graph.RoadClassMajor:
				return 2
			default:
				return 1
			}
		})
		next = candidates[m.generatorFor(a.kind).DiscreteDistributionSafe(weights)]
	} else {
		next = candidates[m.generatorFor(a.kind).IntnSafe(len(candidates))]
	}
	nodeA, nodeB := g.Edge(next).Endpoints()
	forward := nodeA == current
	a.nav.Previous = current
	a.nav.Edge = next
	a.nav.Forward = forward
	if forward {
		a.nav.Progress = 0
		a.nav.Destination = nodeB
	} else {
		a.nav.Progress = 1
		a.nav.Destination = nodeA
	}
	a.nav.Stopping = false
	if a.kind.IsVehicular() {
		c := a.ctx.RuntimeConfig().Agent
		knob := m.classKnob(g.Edge(next).Class())
		a.nav.TargetSpeed = c.VehicleBaseSpeed * knob.SpeedMult
		a.nav.TargetLaneOffset = knob.LaneOffset
	}
}

// easeLane 流水线阶段4：车道偏移缓动
// 功能：以横向速度把当前车道偏移逼近目标偏移，不产生过冲
// 参数：dt-时间步长
func (a *Agent) easeLane(dt float64) {
	if !a.kind.IsVehicular() {
		return
	}
	maxStep := a.ctx.RuntimeConfig().Agent.LateralSpeed * dt
	delta := a.nav.TargetLaneOffset - a.nav.LaneOffset
	a.nav.LaneOffset += lo.Clamp(delta, -maxStep, maxStep)
}

// syncTransform 流水线阶段5：坐标同步
// 功能：按收敛后的进度在折线上插值，叠加法向偏移，朝向行进方向
// 说明：车辆偏移为车道偏移，反向行进时取反以保持在行进方向同侧；
// 行人偏移为人行道距离x侧别，侧别固定在道路坐标系，与行进方向无关
func (a *Agent) syncTransform() {
	edge, err := a.ctx.Graph().EdgeOrError(a.nav.Edge)
	if err != nil {
		return
	}
	progress := lo.Clamp(a.nav.Progress, 0, 1)
	offset := a.nav.LaneOffset
	if a.kind == entity.AgentKindPedestrian {
		offset = a.ctx.RuntimeConfig().Agent.SidewalkOffset * a.nav.Side
	} else if !a.nav.Forward {
		offset = -offset
	}
	direction := edge.GetDirectionByS(progress * edge.Length()).Direction
	if !a.nav.Forward {
		direction += math.Pi
	}
	a.transform = entity.Transform{
		Position:  edge.GetOffsetPositionByProgress(progress, offset),
		Direction: direction,
	}
}
