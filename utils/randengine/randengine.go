// Package randengine 随机数引擎，包装golang.org/x/exp/rand并补充常用的采样方法
package randengine

import (
	"flag"
	"sync"

	"golang.org/x/exp/rand"
)

var (
	seedOffset = flag.Uint64("rand.seed_offset", 0, "seed offset") // 种子偏移量，用于整体平移所有随机数序列
)

// Engine 随机数引擎
// 功能：提供可复现的随机数生成，带Safe后缀的方法可跨goroutine共享
// 说明：不带Safe后缀的方法沿用底层rand.Rand，只能被单一goroutine持有
type Engine struct {
	*rand.Rand
	mtx sync.Mutex
}

// New 创建随机数引擎
// 参数：seed-随机数种子（实际种子为seed+全局偏移量）
// 返回：随机数引擎指针
func New(seed uint64) *Engine {
	return &Engine{Rand: rand.New(rand.NewSource(seed + *seedOffset))}
}

// PTrue 以指定概率返回true（非线程安全）
// 参数：p-返回true的概率
func (e *Engine) PTrue(p float64) bool {
	return e.Float64() < p
}

// PTrueSafe 以指定概率返回true（线程安全）
func (e *Engine) PTrueSafe(p float64) bool {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.Float64() < p
}

// IntnSafe 随机生成[0, n)内的整数（线程安全）
func (e *Engine) IntnSafe(n int) int {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.Intn(n)
}

// Float64Safe 随机生成[0.0, 1.0)内的浮点数（线程安全）
func (e *Engine) Float64Safe() float64 {
	e.mtx.Lock()
	defer e.mtx.Unlock()
	return e.Float64()
}

// DiscreteDistribution 按给定权重采样下标（非线程安全）
// 参数：weight-权重数组，元素为非负权重
// 返回：[0, len(weight))内的随机下标
// 算法说明：累积分布法；浮点累加误差导致的越界兜底到最后一个下标，
// 返回值总是可以安全地用于索引权重对应的数组
func (e *Engine) DiscreteDistribution(weight []float64) int32 {
	return e.discreteDistribution(weight, e.Float64())
}

// DiscreteDistributionSafe 按给定权重采样下标（线程安全）
func (e *Engine) DiscreteDistributionSafe(weight []float64) int32 {
	return e.discreteDistribution(weight, e.Float64Safe())
}

func (e *Engine) discreteDistribution(weight []float64, f float64) int32 {
	random := .0
	for _, w := range weight {
		random += w
	}
	random *= f
	sum := 0.
	for i, w := range weight {
		sum += w
		if sum > random {
			return int32(i)
		}
	}
	return int32(len(weight)) - 1
}
