package agent

import (
	"fmt"
	"sync/atomic"

	"git.fiblab.net/general/common/v2/parallel"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/graph"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/container"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/randengine"
)

// 每步出生上限
const (
	maxVehicleSpawnPerStep    = 5
	maxPedestrianSpawnPerStep = 10
)

// 智能体管理器
type AgentManager struct {
	ctx entity.ITaskContext

	agents *container.IncrementalArray[*Agent]
	data   map[int32]*Agent
	nextID int32

	// 出生点缓存，Init时从路网一次性采集
	vehicleSpawnNodes    []graph.NodeID
	pedestrianSpawnNodes []graph.NodeID

	vehicleGenerator    *randengine.Engine
	pedestrianGenerator *randengine.Engine

	// snapshot人数，Prepare时重算
	vehicleCount    int32
	pedestrianCount int32
	// 本步已出生但尚未进入主数组的个体数
	pendingVehicles    int32
	pendingPedestrians int32

	// 累计出生/消亡计数，供指标输出
	spawned   [3]atomic.Int64 // 下标为AgentKind
	despawned [3]atomic.Int64
}

// NewManager 创建智能体管理器实例
// 参数：ctx-任务上下文
func NewManager(ctx entity.ITaskContext) *AgentManager {
	c := ctx.RuntimeConfig().Agent
	return &AgentManager{
		ctx:                 ctx,
		agents:              container.NewIncrementalArray[*Agent](),
		data:                make(map[int32]*Agent),
		vehicleGenerator:    randengine.New(c.VehicleSeed),
		pedestrianGenerator: randengine.New(c.PedestrianSeed),
	}
}

// Init 初始化出生点缓存
// 功能：从路网中采集车辆与行人的候选出生节点
// 参数：g-路网图
// 说明：车辆从度>=2的真交叉口出生，行人从任意非断头路节点
// （带主干道/次干道关联边）出生；路网不变，缓存一次性构建
func (m *AgentManager) Init(g *graph.RoadGraph) {
	for _, node := range g.Nodes() {
		if node.Kind() == graph.NodeKindIntersection && g.NodeDegree(node.ID()) >= 2 {
			m.vehicleSpawnNodes = append(m.vehicleSpawnNodes, node.ID())
		}
		if node.Kind() == graph.NodeKindDeadEnd {
			continue
		}
		for _, id := range g.IncidentEdges(node.ID()) {
			if class := g.Edge(id).Class(); class == graph.RoadClassMajor || class == graph.RoadClassMinor {
				m.pedestrianSpawnNodes = append(m.pedestrianSpawnNodes, node.ID())
				break
			}
		}
	}
	if len(m.vehicleSpawnNodes) == 0 {
		log.Warnf("no valid intersections for vehicle spawning")
	}
	if len(m.pedestrianSpawnNodes) == 0 {
		log.Warnf("no valid nodes for pedestrian spawning")
	}
	log.Infof("agent spawn nodes: %d vehicle, %d pedestrian", len(m.vehicleSpawnNodes), len(m.pedestrianSpawnNodes))
}

// Get 根据ID获取Agent，如果不存在则panic
func (m *AgentManager) Get(id int32) entity.IAgent {
	if a, ok := m.data[id]; !ok {
		log.Panicf("no id %d in agent data", id)
		return nil
	} else {
		return a
	}
}

// GetOrError 根据ID获取Agent，如果不存在则返回error
func (m *AgentManager) GetOrError(id int32) (entity.IAgent, error) {
	if a, ok := m.data[id]; !ok {
		return nil, fmt.Errorf("no id %d in agent data", id)
	} else {
		return a, nil
	}
}

// Agents 获取当前主数组中的所有Agent
func (m *AgentManager) Agents() []*Agent {
	return m.agents.Data()
}

// VehicleCount 当前在网机动车数（含公交车）
func (m *AgentManager) VehicleCount() int32 {
	return m.vehicleCount
}

// PedestrianCount 当前在网行人数
func (m *AgentManager) PedestrianCount() int32 {
	return m.pedestrianCount
}

// SpawnedTotal 累计出生数
func (m *AgentManager) SpawnedTotal(kind entity.AgentKind) int64 {
	return m.spawned[kind].Load()
}

// DespawnedTotal 累计消亡数
func (m *AgentManager) DespawnedTotal(kind entity.AgentKind) int64 {
	return m.despawned[kind].Load()
}

// Prepare 准备阶段
// 功能：应用上一步的增删操作，重建ID索引与人数snapshot
func (m *AgentManager) Prepare() {
	m.agents.Prepare()
	m.data = make(map[int32]*Agent, m.agents.Len())
	m.vehicleCount, m.pedestrianCount = 0, 0
	for _, a := range m.agents.Data() {
		m.data[a.id] = a
		if a.kind.IsVehicular() {
			m.vehicleCount++
		} else {
			m.pedestrianCount++
		}
	}
	m.pendingVehicles, m.pendingPedestrians = 0, 0
}

// Update 更新阶段，推进导航流水线
// 功能：先惰性补充人口，再按固定顺序执行五个全量阶段：
// 信号合规->纵向运动->换边->车道缓动->坐标同步
// 参数：dt-时间步长
// 说明：阶段顺序不可调换；各阶段内部对全体智能体并行，
// 消亡通过延迟移除在下一次Prepare时生效
func (m *AgentManager) Update(dt float64) {
	m.spawnPending()
	agents := m.agents.Data()
	parallel.GoFor(agents, func(a *Agent) { a.checkSignal() })
	parallel.GoFor(agents, func(a *Agent) { a.move(dt) })
	parallel.GoFor(agents, func(a *Agent) {
		if !a.despawned {
			a.transition(m)
		}
	})
	parallel.GoFor(agents, func(a *Agent) { a.easeLane(dt) })
	parallel.GoFor(agents, func(a *Agent) { a.syncTransform() })
}

// generatorFor 获取该类个体对应的随机数引擎
func (m *AgentManager) generatorFor(kind entity.AgentKind) *randengine.Engine {
	if kind == entity.AgentKindPedestrian {
		return m.pedestrianGenerator
	}
	return m.vehicleGenerator
}

// classKnob 获取道路等级对应的车辆参数
func (m *AgentManager) classKnob(class graph.RoadClass) config.RoadClassKnob {
	c := m.ctx.RuntimeConfig().Agent
	switch class {
	case graph.RoadClassHighway:
		return c.Highway
	case graph.RoadClassMajor:
		return c.Major
	case graph.RoadClassMinor:
		return c.Minor
	default:
		return c.Alley
	}
}

// markDespawned 标记个体消亡
// 功能：置位消亡标志并提交延迟移除
// 说明：并行阶段内可安全调用；主数组的实际收缩发生在下一次Prepare
func (m *AgentManager) markDespawned(a *Agent) {
	a.despawned = true
	m.agents.Remove(a)
	m.despawned[a.kind].Add(1)
}

// spawnPending 惰性补充人口
// 功能：每步向目标人数补充少量个体（车辆<=5、行人<=10）
// 说明：新个体经延迟添加在下一次Prepare进入主数组，
// pending计数避免生效前重复补充
func (m *AgentManager) spawnPending() {
	c := m.ctx.RuntimeConfig().Agent
	for i := 0; i < maxVehicleSpawnPerStep; i++ {
		if int(m.vehicleCount+m.pendingVehicles) >= c.TargetVehicles {
			break
		}
		if m.spawnVehicle() {
			m.pendingVehicles++
		}
	}
	for i := 0; i < maxPedestrianSpawnPerStep; i++ {
		if int(m.pedestrianCount+m.pendingPedestrians) >= c.TargetPedestrians {
			break
		}
		if m.spawnPedestrian() {
			m.pendingPedestrians++
		}
	}
}

// spawnVehicle 出生一辆机动车
// 功能：随机选择出生交叉口与关联边，按bus_ratio决定是否为公交车，
// 目标速度=基础速度x个体扰动x道路等级倍率
// 返回：是否出生成功
func (m *AgentManager) spawnVehicle() bool {
	if len(m.vehicleSpawnNodes) == 0 {
		return false
	}
	g := m.ctx.Graph()
	c := m.ctx.RuntimeConfig().Agent
	rng := m.vehicleGenerator
	node := m.vehicleSpawnNodes[rng.IntnSafe(len(m.vehicleSpawnNodes))]
	edges := g.IncidentEdges(node)
	if len(edges) == 0 {
		return false
	}
	edgeID := edges[rng.IntnSafe(len(edges))]
	edge := g.Edge(edgeID)

	kind := entity.AgentKindVehicle
	if rng.PTrueSafe(c.BusRatio) {
		kind = entity.AgentKindBus
	}
	variation := 1 + (rng.Float64Safe()*2-1)*c.VehicleSpeedVariation
	knob := m.classKnob(edge.Class())
	targetSpeed := c.VehicleBaseSpeed * variation * knob.SpeedMult

	a := m.newAgent(kind, node, edge)
	a.nav.Speed = targetSpeed
	a.nav.TargetSpeed = targetSpeed
	a.nav.LaneOffset = knob.LaneOffset
	a.nav.TargetLaneOffset = knob.LaneOffset
	a.syncTransform()
	m.agents.Add(a)
	m.spawned[kind].Add(1)
	return true
}

// spawnPedestrian 出生一个行人
// 功能：随机选择出生节点及其主干道/次干道关联边，
// 速度=基础速度+个体扰动，人行道侧别随机且此后保持不变
// 返回：是否出生成功
func (m *AgentManager) spawnPedestrian() bool {
	if len(m.pedestrianSpawnNodes) == 0 {
		return false
	}
	g := m.ctx.Graph()
	c := m.ctx.RuntimeConfig().Agent
	rng := m.pedestrianGenerator
	node := m.pedestrianSpawnNodes[rng.IntnSafe(len(m.pedestrianSpawnNodes))]
	candidates := make([]graph.EdgeID, 0, 4)
	for _, id := range g.IncidentEdges(node) {
		if class := g.Edge(id).Class(); class == graph.RoadClassMajor || class == graph.RoadClassMinor {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return false
	}
	edge := g.Edge(candidates[rng.IntnSafe(len(candidates))])

	speed := c.PedestrianBaseSpeed + (rng.Float64Safe()*2-1)*c.PedestrianSpeedVariance
	side := 1.0
	if rng.PTrueSafe(0.5) {
		side = -1.0
	}

	a := m.newAgent(entity.AgentKindPedestrian, node, edge)
	a.nav.Speed = speed
	a.nav.TargetSpeed = speed
	a.nav.Side = side
	a.syncTransform()
	m.agents.Add(a)
	m.spawned[entity.AgentKindPedestrian].Add(1)
	return true
}

// newAgent 构造出生在指定节点、驶入指定边的个体
// 说明：行进方向由出生节点与边端点的匹配关系决定，
// 进度重置到驶入端
func (m *AgentManager) newAgent(kind entity.AgentKind, node graph.NodeID, edge *graph.RoadEdge) *Agent {
	nodeA, nodeB := edge.Endpoints()
	forward := nodeA == node
	a := &Agent{
		ctx:  m.ctx,
		id:   m.nextID,
		kind: kind,
		nav: Navigation{
			Edge:     edge.ID(),
			Forward:  forward,
			Previous: node,
		},
	}
	m.nextID++
	if forward {
		a.nav.Progress = 0
		a.nav.Destination = nodeB
	} else {
		a.nav.Progress = 1
		a.nav.Destination = nodeA
	}
	return a
}
