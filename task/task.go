package task

import (
	"sync/atomic"

	"github.com/tsinghua-fib-lab/citymotion-sim-oss/clock"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/agent"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/catraffic"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/graph"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/signal"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/metrics"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/config"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/input"
)

// Context 仿真任务上下文
// 功能：包含一次仿真任务的所有变量和状态，替代全局变量
// 说明：持有时钟、路网图与各管理器；同一进程内可同时运行
// 多个互不干扰的Context实例（用于自动化测试）
type Context struct {
	// 关闭指令
	closed atomic.Bool

	// 时钟
	clock *clock.Clock
	// 路网图，Init后只读共享
	graph *graph.RoadGraph

	// 信控管理器
	signalManager entity.ISignalManager
	// 元胞自动机交通管理器
	caTrafficManager entity.ICaTrafficManager
	// 智能体管理器
	agentManager entity.IAgentManager

	// 运行时配置文件
	runtimeConfig *config.RuntimeConfig

	// 用于初始化的输入
	initRes *input.MapData
}

// NewContext 创建新的仿真任务上下文
// 功能：加载输入数据并初始化仿真系统的所有组件
// 参数：c-配置对象
// 返回：初始化完成的Context实例
// 算法说明：
// 1. 填充默认值并收敛配置旋钮，创建运行时配置
// 2. 根据控制配置创建时钟
// 3. 加载路网输入数据（文件或MongoDB）
// 4. 创建信控、元胞自动机、智能体管理器
func NewContext(c config.Config) *Context {
	ctx := &Context{}
	ctx.runtimeConfig = config.NewRuntimeConfig(c)
	ctx.clock = clock.New(ctx.runtimeConfig.C)

	// 下载模拟器启动所需的数据
	ctx.initRes = input.Load(c.Input)

	// 新建各类模拟对象
	ctx.signalManager = signal.NewManager(ctx)
	ctx.caTrafficManager = catraffic.NewManager(ctx)
	ctx.agentManager = agent.NewManager(ctx)
	return ctx
}

// GetInput 获取初始化输入数据
func (ctx *Context) GetInput() *input.MapData {
	return ctx.initRes
}

func (ctx *Context) Clock() *clock.Clock {
	return ctx.clock
}

func (ctx *Context) Graph() *graph.RoadGraph {
	return ctx.graph
}

func (ctx *Context) SignalManager() entity.ISignalManager {
	return ctx.signalManager
}

func (ctx *Context) CaTrafficManager() entity.ICaTrafficManager {
	return ctx.caTrafficManager
}

func (ctx *Context) AgentManager() entity.IAgentManager {
	return ctx.agentManager
}

func (ctx *Context) RuntimeConfig() *config.RuntimeConfig {
	return ctx.runtimeConfig
}

// Init 初始化仿真状态
// 功能：构建路网图并初始化所有管理器
// 说明：图构建只发生一次，此后整个仿真期间不可变；
// 管理器初始化顺序无依赖，按信控->元胞->智能体串行执行
func (ctx *Context) Init() {
	ctx.clock.Init()

	ctx.graph = input.BuildGraph(ctx.initRes, ctx.runtimeConfig.C.SnapDistance)
	log.Infof("Node: %v", ctx.graph.NodeCount())
	log.Infof("Edge: %v", ctx.graph.EdgeCount())

	ctx.signalManager.Init(ctx.graph)
	ctx.caTrafficManager.Init(ctx.graph)
	ctx.agentManager.Init(ctx.graph)

	metrics.SignalControllers.Set(float64(ctx.signalManager.Count()))
}

// Close 关闭仿真任务
func (ctx *Context) Close() {
	ctx.closed.Store(true)
}
