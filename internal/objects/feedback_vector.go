package objects

import "go.uber.org/atomic"

// ============================================================================
// 反馈向量
// ============================================================================

// MaxProfilerTicks 剖析 tick 计数的饱和上限
const MaxProfilerTicks = 0xFFFF

// FeedbackVector 每个函数的剖析与内联缓存载荷
// 在第一次 tick 时惰性分配
type FeedbackVector struct {
	// 调用计数，向量存在后非零
	// 创建时以宽松序写入，之后由解释器递增
	invocationCount atomic.Int32

	// tick 计数只在执行线程上写，单调不减，饱和不回绕
	profilerTicks int
}

// NewFeedbackVector 创建反馈向量
func NewFeedbackVector() *FeedbackVector {
	return &FeedbackVector{}
}

// ProfilerTicks 已观察到的 tick 数
func (v *FeedbackVector) ProfilerTicks() int { return v.profilerTicks }

// SaturatingIncrementProfilerTicks tick 计数加一，到达上限后保持不变
func (v *FeedbackVector) SaturatingIncrementProfilerTicks() {
	if v.profilerTicks < MaxProfilerTicks {
		v.profilerTicks++
	}
}

// InvocationCount 调用计数
func (v *FeedbackVector) InvocationCount() int {
	return int(v.invocationCount.Load())
}

// SetInvocationCount 写入调用计数（宽松序）
func (v *FeedbackVector) SetInvocationCount(n int) {
	v.invocationCount.Store(int32(n))
}

// IncrementInvocationCount 调用计数加一
func (v *FeedbackVector) IncrementInvocationCount() {
	v.invocationCount.Add(1)
}
