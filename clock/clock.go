package clock

import (
	"fmt"

	"github.com/tsinghua-fib-lab/citymotion-sim-oss/utils/config"
)

// Clock 仿真时钟管理器
// 功能：管理仿真系统的时间推进
// 说明：维护当前仿真时间、步数等信息；智能体导航每步以连续时间推进，
// 元胞自动机只在较低频的tick上推进，两套时间基准在此统一管理
type Clock struct {
	DT            float64 // 每个模拟步时间间隔（秒）
	START_STEP    int32   // 起始步
	END_STEP      int32   // 结束步，模拟区间[START, END)
	CA_TICK_EVERY int32   // 元胞自动机tick间隔（步数）

	T            float64 // 当前时间（秒）
	InternalStep int32   // 当前内部步数
}

// New 根据配置创建新的时钟实例
// 功能：根据全局配置初始化时钟信息
// 参数：c-控制配置，包含时间步配置与元胞自动机tick间隔
// 返回：初始化完成的时钟实例
func New(c config.Control) *Clock {
	clk := &Clock{
		DT:            c.Step.Interval,
		START_STEP:    c.Step.Start,
		END_STEP:      c.Step.Start + c.Step.Total,
		CA_TICK_EVERY: c.CaTickInterval,
	}
	clk.Init()
	return clk
}

// Init 初始化时钟状态
// 功能：重置内部步数为起始步，重新计算当前时间
func (c *Clock) Init() {
	c.InternalStep = c.START_STEP
	c.T = float64(c.InternalStep) * c.DT
}

// OnCaTick 检查当前步是否为元胞自动机tick
// 功能：判断元胞自动机模型是否应在本步推进
// 返回：true表示本步触发一次tick
// 说明：tick与渲染/更新频率解耦，便于单独调节模型节奏
func (c *Clock) OnCaTick() bool {
	return c.InternalStep%c.CA_TICK_EVERY == 0
}

// String 获取时钟的字符串表示
// 功能：将当前时间格式化为可读的字符串（HH:MM:SS）
func (c *Clock) String() string {
	t := c.T
	h := int(t / 3600)
	t -= float64(h * 3600)
	m := int(t / 60)
	t -= float64(m * 60)
	s := int(t)
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒
// 功能：将当前时间分解为小时、分钟、秒三个部分
// 返回：小时、分钟、秒（秒为浮点数，支持亚秒级精度）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	hour := int(c.T) / 3600
	minute := int(c.T) % 3600 / 60
	second := c.T - float64(hour*3600+minute*60)
	return hour, minute, second
}
