package entity

import (
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/clock"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/entity/graph"
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/config"
)

type ITaskContext interface {
	Clock() *clock.Clock
	Graph() *graph.RoadGraph
	SignalManager() ISignalManager
	CaTrafficManager() ICaTrafficManager
	AgentManager() IAgentManager
	RuntimeConfig() *config.RuntimeConfig
}
