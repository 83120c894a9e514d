package catraffic

import (
	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/randengine"
)

// 空元胞标记
const emptyCell = int8(-1)

// CaLane 元胞自动机车道
// 功能：以固定长度的环形元胞数组表示一条车道，
// 每个元胞为空（-1）或存放一辆车的当前速度（0..maxVelocity）
// 说明：环形结构使车道自成闭环，前车间距计算回绕到队首；
// 车道之间完全独立，无变道
type CaLane struct {
	cells []int8
}

// newCaLane 创建指定元胞数的空车道
func newCaLane(n int) *CaLane {
	l := &CaLane{cells: make([]int8, n)}
	for i := range l.cells {
		l.cells[i] = emptyCell
	}
	return l
}

// Len 获取元胞数（车道容量）
func (l *CaLane) Len() int {
	return len(l.cells)
}

// Cells 获取元胞数组
// 说明：返回内部切片，调用方只读
func (l *CaLane) Cells() []int8 {
	return l.cells
}

// VehicleCount 统计车道上的车辆数
func (l *CaLane) VehicleCount() int32 {
	var n int32
	for _, c := range l.cells {
		if c != emptyCell {
			n++
		}
	}
	return n
}

// VelocitySum 统计车道上所有车辆的速度之和（元胞/tick）
func (l *CaLane) VelocitySum() int32 {
	var sum int32
	for _, c := range l.cells {
		if c != emptyCell {
			sum += int32(c)
		}
	}
	return sum
}

// Density 获取车道密度（车辆数/容量）
func (l *CaLane) Density() float64 {
	if len(l.cells) == 0 {
		return 0
	}
	return float64(l.VehicleCount()) / float64(len(l.cells))
}

// gapAhead 计算元胞i上车辆与前车的间距（空元胞数）
// 功能：从i+1起沿行进方向寻找第一个被占用的元胞，支持回绕
// 说明：车道上只有这一辆车时返回长度-1（只能看到自己的尾部）
func (l *CaLane) gapAhead(i int) int {
	n := len(l.cells)
	for gap := 0; gap < n-1; gap++ {
		if l.cells[(i+1+gap)%n] != emptyCell {
			return gap
		}
	}
	return n - 1
}

// step 推进一次NaSch元胞自动机tick
// 功能：对车道上每辆车执行加速、安全间距收敛、随机慢化、位移
// 参数：rng-随机数引擎，maxVelocity-最大速度，slowdownProb-随机慢化概率
// 算法说明：
// 1. 加速：v = min(v+1, maxVelocity)
// 2. 安全间距：v = min(v, 与前车间距)
// 3. 随机慢化：以slowdownProb概率v = max(v-1, 0)
// 4. 位移：车辆前进v个元胞（模车道长度）
// 说明：所有车辆基于同一份tick前的快照决策，结果写入新数组后
// 原子替换，保证更新次序无关且不会发生碰撞
func (l *CaLane) step(rng *randengine.Engine, maxVelocity int32, slowdownProb float64) {
	n := len(l.cells)
	next := make([]int8, n)
	for i := range next {
		next[i] = emptyCell
	}
	for i, c := range l.cells {
		if c == emptyCell {
			continue
		}
		v := int(c) + 1
		if v > int(maxVelocity) {
			v = int(maxVelocity)
		}
		if gap := l.gapAhead(i); v > gap {
			v = gap
		}
		if v > 0 && rng.PTrue(slowdownProb) {
			v--
		}
		next[(i+v)%n] = int8(v)
	}
	l.cells = next
}

// Spawn 在指定元胞放置一辆车
// 功能：目标元胞为空时放置速度为v的车辆
// 参数：position-元胞下标，v-初始速度
// 返回：是否放置成功
func (l *CaLane) Spawn(position int, v int8) bool {
	if position < 0 || position >= len(l.cells) || l.cells[position] != emptyCell {
		return false
	}
	l.cells[position] = v
	return true
}

// Despawn 移除指定元胞上的车辆
// 参数：position-元胞下标
// 返回：被移除车辆的速度与是否移除成功
func (l *CaLane) Despawn(position int) (int8, bool) {
	if position < 0 || position >= len(l.cells) || l.cells[position] == emptyCell {
		return 0, false
	}
	v := l.cells[position]
	l.cells[position] = emptyCell
	return v, true
}
