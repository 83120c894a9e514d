package entity

import (
	"fmt"

	"git.fiblab.net/general/common/v2/geometry"
)

// Transform 世界坐标变换
// 说明：智能体在导航流水线末段由路段几何同步产生，供渲染/输出消费
type Transform struct {
	Position  geometry.Point // 世界坐标
	Direction float64        // 朝向角（弧度，atan2约定）
}

func (t Transform) String() string {
	return fmt.Sprintf("Transform{(%.2f, %.2f), θ=%.3f}", t.Position.X, t.Position.Y, t.Direction)
}

// LightPhase 信号灯相位
type LightPhase int32

const (
	LightPhaseGreen  LightPhase = iota // 绿灯
	LightPhaseYellow                   // 黄灯
	LightPhaseRed                      // 红灯
)

func (p LightPhase) String() string {
	switch p {
	case LightPhaseGreen:
		return "green"
	case LightPhaseYellow:
		return "yellow"
	case LightPhaseRed:
		return "red"
	default:
		return "unknown"
	}
}

// AgentKind 智能体类型
type AgentKind int32

const (
	AgentKindVehicle    AgentKind = iota // 私家车
	AgentKindBus                         // 公交车
	AgentKindPedestrian                  // 行人
)

func (k AgentKind) String() string {
	switch k {
	case AgentKindVehicle:
		return "vehicle"
	case AgentKindBus:
		return "bus"
	case AgentKindPedestrian:
		return "pedestrian"
	default:
		return "unknown"
	}
}

// IsVehicular 判断是否为机动车类型（私家车或公交车）
func (k AgentKind) IsVehicular() bool {
	return k == AgentKindVehicle || k == AgentKindBus
}

// TrafficStats 元胞自动机路况统计
// 说明：由ICaTrafficManager在每次tick后汇总产生，供指标输出与
// 拥堵观测消费；所有字段均为对全路网的聚合量
type TrafficStats struct {
	VehicleCount int32   // 元胞车辆总数
	Capacity     int32   // 元胞总容量
	AvgDensity   float64 // 平均密度（车辆数/容量）
	AvgVelocity  float64 // 平均速度（元胞/tick，对全网车辆求均值，而非各车道均值的均值）
	Congested    int32   // 拥堵路段数（密度>0.3）
	FreeFlow     int32   // 畅通路段数（密度<0.1）
}

func (s TrafficStats) String() string {
	return fmt.Sprintf(
		"TrafficStats{N=%d/%d, density=%.3f, v=%.2f, congested=%d, freeflow=%d}",
		s.VehicleCount, s.Capacity, s.AvgDensity, s.AvgVelocity, s.Congested, s.FreeFlow,
	)
}
