package config

// InputPath 指定路网数据来源的配置（MongoDB、文件系统）
// 功能：定义数据输入路径的配置结构，支持多种数据源
// 说明：File优先级高于MongoDB
type InputPath struct {
	DB   string `yaml:"db"`             // 数据库名
	Col  string `yaml:"col"`            // 集合名
	File string `yaml:"file,omitempty"` // 文件路径（优先级高于MongoDB）
}

// Input 指定模拟器所有输入数据的配置项
// 功能：定义仿真系统的输入数据配置
// 说明：路网数据是本模拟器唯一的外部输入
type Input struct {
	URI string    `yaml:"uri"` // MongoDB连接字符串
	Map InputPath `yaml:"map"` // 路网
}

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Control 模拟器控制配置
// 功能：定义仿真系统的核心控制参数
// 说明：元胞自动机按tick推进，每CaTickInterval个仿真步触发一次
type Control struct {
	Step           ControlStep `yaml:"step"`
	CaTickInterval int32       `yaml:"ca_tick_interval,omitempty"` // 元胞自动机tick间隔（步数）
	SnapDistance   float64     `yaml:"snap_distance,omitempty"`    // 路网构建时端点吸附距离
}

// Traffic 元胞自动机交通流模型配置
// 功能：定义Nagel-Schreckenberg模型的所有数值旋钮
type Traffic struct {
	CellSize      float64 `yaml:"cell_size,omitempty"`      // 元胞长度（单位长度，约为一辆车+间隙）
	MaxVelocity   int32   `yaml:"max_velocity,omitempty"`   // 最大速度（元胞/tick）
	SlowdownProb  float64 `yaml:"slowdown_prob,omitempty"`  // 随机减速概率
	InitDensity   float64 `yaml:"init_density,omitempty"`   // 初始化车流密度
	TargetDensity float64 `yaml:"target_density,omitempty"` // 稳态目标密度
	SpawnProb     float64 `yaml:"spawn_prob,omitempty"`     // 入口元胞生成概率（密度低于目标时）
	DespawnProb   float64 `yaml:"despawn_prob,omitempty"`   // 出口元胞移除概率
	Seed          uint64  `yaml:"seed,omitempty"`           // 随机数种子
}

// RoadClassKnob 按道路等级区分的智能体行驶参数
type RoadClassKnob struct {
	SpeedMult  float64 `yaml:"speed_mult"`  // 速度倍率
	LaneOffset float64 `yaml:"lane_offset"` // 车道横向偏移（相对道路中心线）
}

// Agent 智能体导航模型配置
// 功能：定义车辆/公交/行人的生成数量、速度与运动参数
type Agent struct {
	TargetVehicles    int     `yaml:"target_vehicles,omitempty"`    // 车辆目标数量
	TargetPedestrians int     `yaml:"target_pedestrians,omitempty"` // 行人目标数量
	BusRatio          float64 `yaml:"bus_ratio,omitempty"`          // 生成车辆中公交车的占比

	VehicleBaseSpeed        float64 `yaml:"vehicle_base_speed,omitempty"`        // 车辆基础速度（单位/秒）
	VehicleSpeedVariation   float64 `yaml:"vehicle_speed_variation,omitempty"`   // 车辆速度随机浮动（±比例）
	PedestrianBaseSpeed     float64 `yaml:"pedestrian_base_speed,omitempty"`     // 行人基础速度（单位/秒）
	PedestrianSpeedVariance float64 `yaml:"pedestrian_speed_variance,omitempty"` // 行人速度随机浮动（±绝对值）

	Acceleration float64 `yaml:"acceleration,omitempty"`  // 加速度（单位/秒²）
	Deceleration float64 `yaml:"deceleration,omitempty"`  // 减速度（单位/秒²）
	LateralSpeed float64 `yaml:"lateral_speed,omitempty"` // 变道横向速度（单位/秒）

	SidewalkOffset float64 `yaml:"sidewalk_offset,omitempty"` // 人行道相对道路中心线的偏移

	Highway RoadClassKnob `yaml:"highway,omitempty"` // 高速路参数
	Major   RoadClassKnob `yaml:"major,omitempty"`   // 主干道参数
	Minor   RoadClassKnob `yaml:"minor,omitempty"`   // 次干道参数
	Alley   RoadClassKnob `yaml:"alley,omitempty"`   // 小巷参数

	VehicleSeed    uint64 `yaml:"vehicle_seed,omitempty"`    // 车辆随机数种子
	PedestrianSeed uint64 `yaml:"pedestrian_seed,omitempty"` // 行人随机数种子
}

// Signal 信号灯配置
// 功能：定义信号灯各相位的持续时间（秒）
// 说明：各相位时长独立可配，不要求相等
type Signal struct {
	Green  float64 `yaml:"green,omitempty"`  // 绿灯时长
	Yellow float64 `yaml:"yellow,omitempty"` // 黄灯时长
	Red    float64 `yaml:"red,omitempty"`    // 红灯时长
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
type Config struct {
	Input   Input   `yaml:"input"`             // 输入
	Control Control `yaml:"control"`           // 模拟过程控制
	Traffic Traffic `yaml:"traffic,omitempty"` // 元胞自动机交通流
	Agent   Agent   `yaml:"agent,omitempty"`   // 智能体导航
	Signal  Signal  `yaml:"signal,omitempty"`  // 信号灯
}
