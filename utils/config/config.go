package config

import "github.com/samber/lo"

// 各配置项默认值
const (
	defaultCaTickInterval = 10
	defaultSnapDistance   = 10

	defaultCellSize      = 7.5 // 一辆车+间隙的典型长度
	defaultMaxVelocity   = 5
	defaultSlowdownProb  = 0.3
	defaultInitDensity   = 0.05
	defaultTargetDensity = 0.15
	defaultSpawnProb     = 0.3
	defaultDespawnProb   = 0.2
	defaultTrafficSeed   = 43210

	defaultTargetVehicles    = 25
	defaultTargetPedestrians = 50
	defaultBusRatio          = 0.1

	defaultVehicleBaseSpeed        = 12.0 // ~43 km/h
	defaultVehicleSpeedVariation   = 0.15
	defaultPedestrianBaseSpeed     = 1.4 // ~5 km/h
	defaultPedestrianSpeedVariance = 0.3

	defaultAcceleration = 3.0
	defaultDeceleration = 8.0
	defaultLateralSpeed = 2.0

	defaultSidewalkOffset = 4.0

	defaultVehicleSeed    = 99999
	defaultPedestrianSeed = 88888

	defaultGreenDuration  = 12.0
	defaultYellowDuration = 3.0
	defaultRedDuration    = 12.0
)

// 各道路等级的默认行驶参数
var (
	defaultHighwayKnob = RoadClassKnob{SpeedMult: 1.5, LaneOffset: 5.0}
	defaultMajorKnob   = RoadClassKnob{SpeedMult: 1.0, LaneOffset: 3.0}
	defaultMinorKnob   = RoadClassKnob{SpeedMult: 0.8, LaneOffset: 2.0}
	defaultAlleyKnob   = RoadClassKnob{SpeedMult: 0.5, LaneOffset: 1.0}
)

// Default 获取带默认值的配置
// 功能：返回所有字段填充默认值的Config，作为YAML反序列化的基底
// 说明：概率/比例类旋钮的零值有实际含义（如slowdown_prob为0表示
// 无随机慢化），其默认值只在这里给出：反序列化到本返回值上时，
// 省略的字段保留默认值，显式写出的0保持为0
func Default() Config {
	return Config{
		Control: Control{
			CaTickInterval: defaultCaTickInterval,
			SnapDistance:   defaultSnapDistance,
		},
		Traffic: Traffic{
			CellSize:      defaultCellSize,
			MaxVelocity:   defaultMaxVelocity,
			SlowdownProb:  defaultSlowdownProb,
			InitDensity:   defaultInitDensity,
			TargetDensity: defaultTargetDensity,
			SpawnProb:     defaultSpawnProb,
			DespawnProb:   defaultDespawnProb,
			Seed:          defaultTrafficSeed,
		},
		Agent: Agent{
			TargetVehicles:          defaultTargetVehicles,
			TargetPedestrians:       defaultTargetPedestrians,
			BusRatio:                defaultBusRatio,
			VehicleBaseSpeed:        defaultVehicleBaseSpeed,
			VehicleSpeedVariation:   defaultVehicleSpeedVariation,
			PedestrianBaseSpeed:     defaultPedestrianBaseSpeed,
			PedestrianSpeedVariance: defaultPedestrianSpeedVariance,
			Acceleration:            defaultAcceleration,
			Deceleration:            defaultDeceleration,
			LateralSpeed:            defaultLateralSpeed,
			SidewalkOffset:          defaultSidewalkOffset,
			Highway:                 defaultHighwayKnob,
			Major:                   defaultMajorKnob,
			Minor:                   defaultMinorKnob,
			Alley:                   defaultAlleyKnob,
			VehicleSeed:             defaultVehicleSeed,
			PedestrianSeed:          defaultPedestrianSeed,
		},
		Signal: Signal{
			Green:  defaultGreenDuration,
			Yellow: defaultYellowDuration,
			Red:    defaultRedDuration,
		},
	}
}

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息
// 说明：将YAML配置转换为运行时可用的配置对象，补全默认值并将数值旋钮收敛到合理区间
type RuntimeConfig struct {
	All     Config  // 全部配置
	C       Control // 全局控制配置
	Traffic Traffic // 元胞自动机配置
	Agent   Agent   // 智能体配置
	Signal  Signal  // 信号灯配置
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象，补全默认值并收敛数值范围
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针
// 说明：核心模拟代码假定输入可信，所有范围收敛在这里一次性完成；
// 零值无意义的结构性旋钮（尺寸、速度、种子等）在这里回落到默认值，
// 零值有实际含义的概率/比例旋钮只做范围收敛，其默认值经Default()给出
func NewRuntimeConfig(config Config) *RuntimeConfig {
	rc := &RuntimeConfig{}

	rc.All = config
	rc.C = config.Control
	rc.Traffic = config.Traffic
	rc.Agent = config.Agent
	rc.Signal = config.Signal

	if rc.C.CaTickInterval <= 0 {
		rc.C.CaTickInterval = defaultCaTickInterval
	}
	if rc.C.SnapDistance <= 0 {
		rc.C.SnapDistance = defaultSnapDistance
	}

	t := &rc.Traffic
	if t.CellSize <= 0 {
		t.CellSize = defaultCellSize
	}
	if t.MaxVelocity <= 0 {
		t.MaxVelocity = defaultMaxVelocity
	}
	t.SlowdownProb = lo.Clamp(t.SlowdownProb, 0, 1)
	t.InitDensity = lo.Clamp(t.InitDensity, 0, 1)
	t.TargetDensity = lo.Clamp(t.TargetDensity, 0, 1)
	t.SpawnProb = lo.Clamp(t.SpawnProb, 0, 1)
	t.DespawnProb = lo.Clamp(t.DespawnProb, 0, 1)
	if t.Seed == 0 {
		t.Seed = defaultTrafficSeed
	}

	a := &rc.Agent
	if a.TargetVehicles <= 0 {
		a.TargetVehicles = defaultTargetVehicles
	}
	if a.TargetPedestrians <= 0 {
		a.TargetPedestrians = defaultTargetPedestrians
	}
	a.BusRatio = lo.Clamp(a.BusRatio, 0, 1)
	if a.VehicleBaseSpeed <= 0 {
		a.VehicleBaseSpeed = defaultVehicleBaseSpeed
	}
	a.VehicleSpeedVariation = lo.Clamp(a.VehicleSpeedVariation, 0, 1)
	if a.PedestrianBaseSpeed <= 0 {
		a.PedestrianBaseSpeed = defaultPedestrianBaseSpeed
	}
	a.PedestrianSpeedVariance = lo.Clamp(a.PedestrianSpeedVariance, 0, a.PedestrianBaseSpeed)
	if a.Acceleration <= 0 {
		a.Acceleration = defaultAcceleration
	}
	if a.Deceleration <= 0 {
		a.Deceleration = defaultDeceleration
	}
	if a.LateralSpeed <= 0 {
		a.LateralSpeed = defaultLateralSpeed
	}
	if a.SidewalkOffset <= 0 {
		a.SidewalkOffset = defaultSidewalkOffset
	}
	if a.Highway == (RoadClassKnob{}) {
		a.Highway = defaultHighwayKnob
	}
	if a.Major == (RoadClassKnob{}) {
		a.Major = defaultMajorKnob
	}
	if a.Minor == (RoadClassKnob{}) {
		a.Minor = defaultMinorKnob
	}
	if a.Alley == (RoadClassKnob{}) {
		a.Alley = defaultAlleyKnob
	}
	if a.VehicleSeed == 0 {
		a.VehicleSeed = defaultVehicleSeed
	}
	if a.PedestrianSeed == 0 {
		a.PedestrianSeed = defaultPedestrianSeed
	}

	s := &rc.Signal
	if s.Green <= 0 {
		s.Green = defaultGreenDuration
	}
	if s.Yellow <= 0 {
		s.Yellow = defaultYellowDuration
	}
	if s.Red <= 0 {
		s.Red = defaultRedDuration
	}

	return rc
}
