// Package metrics 仿真运行时指标，经Prometheus暴露
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CurrentStep = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "citymotion_current_step",
		Help: "Current simulation step.",
	})

	CaVehicles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "citymotion_ca_vehicles",
		Help: "Total vehicles in the cellular-automaton traffic model.",
	})
	CaCapacity = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "citymotion_ca_capacity_cells",
		Help: "Total cell capacity of the cellular-automaton traffic model.",
	})
	CaAvgDensity = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "citymotion_ca_avg_density_ratio",
		Help: "Network-wide average density (vehicles per cell, 0-1).",
	})
	CaAvgVelocity = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "citymotion_ca_avg_velocity_cells",
		Help: "Average vehicle velocity in cells per tick.",
	})
	CaCongestedSegments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "citymotion_ca_congested_segments",
		Help: "Number of road segments with density above the congestion threshold.",
	})
	CaFreeFlowSegments = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "citymotion_ca_free_flow_segments",
		Help: "Number of road segments with density below the free-flow threshold.",
	})

	AgentPopulation = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "citymotion_agent_population",
		Help: "Current agent population, labelled by kind.",
	}, []string{"kind"})
	AgentsSpawned = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "citymotion_agents_spawned_total",
		Help: "Cumulative number of agents spawned, labelled by kind.",
	}, []string{"kind"})
	AgentsDespawned = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "citymotion_agents_despawned_total",
		Help: "Cumulative number of agents despawned, labelled by kind.",
	}, []string{"kind"})

	SignalControllers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "citymotion_signal_controllers",
		Help: "Number of traffic light controllers.",
	})
)
