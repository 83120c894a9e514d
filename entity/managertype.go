package entity

import (
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/graph"
)

// Manager依赖倒置

// entity/signal/manager.go的依赖倒置
type ISignalManager interface {
	Init(g *graph.RoadGraph) // 初始化：为每个度>=3的节点创建信号控制器

	// 输入节点ID，查询信号相位；该节点无信号灯时返回false
	Phase(node graph.NodeID) (LightPhase, bool)
	// 信号控制器数量
	Count() int32

	Prepare()          // 准备阶段：snapshot更新
	Update(dt float64) // 更新阶段：相位计时推进
}

// entity/catraffic/manager.go的依赖倒置
type ICaTrafficManager interface {
	Init(g *graph.RoadGraph) // 初始化：为每条足够长的边创建元胞车道并播撒初始车辆

	Stats() TrafficStats // 获取上一次tick的全网路况统计

	Prepare() // 准备阶段
	Update()  // 更新阶段：推进一次元胞自动机tick
}

// entity/agent/manager.go的依赖倒置
type IAgentManager interface {
	Init(g *graph.RoadGraph) // 初始化：缓存出生点节点集合

	// 输入Agent ID，查找Agent，如果不存在则panic
	Get(id int32) IAgent
	// 输入Agent ID，查找Agent，如果不存在则返回error
	GetOrError(id int32) (IAgent, error)

	VehicleCount() int32    // 当前在网机动车数（含公交车）
	PedestrianCount() int32 // 当前在网行人数

	SpawnedTotal(kind AgentKind) int64   // 累计出生数
	DespawnedTotal(kind AgentKind) int64 // 累计消亡数

	Prepare()          // 准备阶段：增删生效+snapshot更新
	Update(dt float64) // 更新阶段：导航流水线
}

// entity/agent/agent.go的依赖倒置
type IAgent interface {
	String() string

	ID() int32           // 获取Agent ID
	Kind() AgentKind     // 获取Agent类型
	Edge() graph.EdgeID  // 获取所在边ID
	Progress() float64   // 获取沿边归一化进度[0,1]
	Forward() bool       // 判断是否沿边a->b方向行进
	Speed() float64      // 获取当前速度（米/秒）
	Stopping() bool      // 判断是否处于信号灯停车状态
	Position() Transform // 获取世界坐标变换
	Despawned() bool     // 判断是否已标记移除
}
