package task

import (
	"flag"
	"sync"

	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/metrics"
)

var (
	heartBeatInterval = flag.Int("log.heartbeat_interval", 100, "心跳日志间隔步数")
)

// prepare 准备阶段，每步执行一次
// 功能：推进时钟，输出心跳日志，并行执行各管理器的准备操作
// 算法说明：
// 1. 更新时钟：增加内部步数并计算当前时间
// 2. 心跳日志：定期输出步数、时间与路况概要
// 3. 并行准备：信控/元胞/智能体三个管理器的Prepare互不依赖，
//    并发执行（snapshot同步与延迟增删生效都发生在这里）
func (ctx *Context) prepare() {
	ctx.clock.InternalStep++
	ctx.clock.T = float64(ctx.clock.InternalStep) * ctx.clock.DT

	if ctx.clock.InternalStep%int32(*heartBeatInterval) == 0 {
		hour, minute, second := ctx.clock.GetHourMinuteSecond()
		log.Infof(
			"STEP: %d(%d:%d:%.2f) agents=%d+%d %v",
			ctx.clock.InternalStep,
			hour, minute, second,
			ctx.agentManager.VehicleCount(),
			ctx.agentManager.PedestrianCount(),
			ctx.caTrafficManager.Stats(),
		)
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx.signalManager.Prepare() // signal
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx.caTrafficManager.Prepare() // catraffic
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx.agentManager.Prepare() // agent
	}()
	wg.Wait()
}

// update 更新阶段，每步执行一次
// 功能：执行主要的仿真逻辑
// 算法说明：
// 1. 并行更新：智能体与信控每步按dt推进；元胞自动机只在tick步
//    推进（与步长解耦的低频节奏）
// 2. 三者互不写对方状态：智能体只读信控snapshot与只读路网图，
//    元胞模型完全独立
// 3. 指标刷新：更新完成后把本步状态写入Prometheus指标
func (ctx *Context) update() {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx.agentManager.Update(ctx.clock.DT) // agent
	}()
	wg.Add(1)
	go func() {
		defer wg.Done()
		ctx.signalManager.Update(ctx.clock.DT) // signal
	}()
	if ctx.clock.OnCaTick() {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ctx.caTrafficManager.Update() // catraffic
		}()
	}
	wg.Wait()

	ctx.refreshMetrics()
}

// refreshMetrics 刷新Prometheus指标
func (ctx *Context) refreshMetrics() {
	metrics.CurrentStep.Set(float64(ctx.clock.InternalStep))

	stats := ctx.caTrafficManager.Stats()
	metrics.CaVehicles.Set(float64(stats.VehicleCount))
	metrics.CaCapacity.Set(float64(stats.Capacity))
	metrics.CaAvgDensity.Set(stats.AvgDensity)
	metrics.CaAvgVelocity.Set(stats.AvgVelocity)
	metrics.CaCongestedSegments.Set(float64(stats.Congested))
	metrics.CaFreeFlowSegments.Set(float64(stats.FreeFlow))

	metrics.AgentPopulation.WithLabelValues("vehicle").Set(float64(ctx.agentManager.VehicleCount()))
	metrics.AgentPopulation.WithLabelValues("pedestrian").Set(float64(ctx.agentManager.PedestrianCount()))
	for _, kind := range []entity.AgentKind{entity.AgentKindVehicle, entity.AgentKindBus, entity.AgentKindPedestrian} {
		metrics.AgentsSpawned.WithLabelValues(kind.String()).Set(float64(ctx.agentManager.SpawnedTotal(kind)))
		metrics.AgentsDespawned.WithLabelValues(kind.String()).Set(float64(ctx.agentManager.DespawnedTotal(kind)))
	}
}

// Run 运行
// 功能：初始化后循环执行prepare/update直到结束步
func (ctx *Context) Run() {
	ctx.Init()
	for {
		ctx.prepare()
		ctx.update()
		if ctx.clock.InternalStep+1 >= ctx.clock.END_STEP || ctx.closed.Load() {
			break
		}
	}
	log.Infof("engine complete")
}
