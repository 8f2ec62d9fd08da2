package objects

import "fmt"

// ============================================================================
// 函数对象
// ============================================================================

// Function 一个闭包实例
// 所有字段只在执行线程上变动
type Function struct {
	shared  *SharedFunctionInfo
	context *NativeContext

	feedbackVector *FeedbackVector

	// 回边/调用时递减，下穿 0 触发一次 tick
	interruptBudget int

	// 分层状态
	inOptimizationQueue bool
	marked              bool
	markedKind          CodeKind
	markedMode          ConcurrencyMode

	// 已安装的更高层代码
	baselineCode  *Code
	optimizedCode *Code
}

// NewFunction 创建函数对象
func NewFunction(shared *SharedFunctionInfo, context *NativeContext) *Function {
	return &Function{shared: shared, context: context}
}

// Shared 共享函数信息
func (f *Function) Shared() *SharedFunctionInfo { return f.shared }

// Context 所属原生上下文
func (f *Function) Context() *NativeContext { return f.context }

// ---------------------------------------------------------------------------
// 反馈向量
// ---------------------------------------------------------------------------

// HasFeedbackVector 是否已分配反馈向量
func (f *Function) HasFeedbackVector() bool { return f.feedbackVector != nil }

// FeedbackVector 反馈向量
func (f *Function) FeedbackVector() *FeedbackVector {
	if f.feedbackVector == nil {
		panic("objects: function has no feedback vector")
	}
	return f.feedbackVector
}

// CreateAndAttachFeedbackVector 分配并挂接反馈向量
// 函数必须已编译出字节码
func (f *Function) CreateAndAttachFeedbackVector() {
	if f.feedbackVector != nil {
		panic("objects: feedback vector already attached")
	}
	if !f.shared.IsCompiled() {
		panic(fmt.Sprintf("objects: %s is not compiled", f.shared.Name()))
	}
	f.feedbackVector = NewFeedbackVector()
}

// ---------------------------------------------------------------------------
// 中断预算
// ---------------------------------------------------------------------------

// InterruptBudget 当前预算
func (f *Function) InterruptBudget() int { return f.interruptBudget }

// SetInterruptBudget 重置预算
func (f *Function) SetInterruptBudget(budget int) { f.interruptBudget = budget }

// DecrementInterruptBudget 预算递减
// 返回 true 表示下穿，调用方应触发一次 tick
func (f *Function) DecrementInterruptBudget(by int) bool {
	f.interruptBudget -= by
	return f.interruptBudget <= 0
}

// ---------------------------------------------------------------------------
// 分层状态
// ---------------------------------------------------------------------------

// GetActiveTier 当前生效的代码层级
// 没有反馈向量时没有层级（"无向量的解释执行"自成一档）
func (f *Function) GetActiveTier() (CodeKind, bool) {
	if !f.HasFeedbackVector() {
		return 0, false
	}
	switch {
	case f.optimizedCode != nil:
		return f.optimizedCode.Kind(), true
	case f.baselineCode != nil:
		return CodeKindBaseline, true
	default:
		return CodeKindInterpreted, true
	}
}

// ActiveTierIsBaseline 当前层级是否是基线
func (f *Function) ActiveTierIsBaseline() bool {
	kind, ok := f.GetActiveTier()
	return ok && kind == CodeKindBaseline
}

// IsInOptimizationQueue 是否已在优化队列中
func (f *Function) IsInOptimizationQueue() bool { return f.inOptimizationQueue }

// SetInOptimizationQueue 编译服务接收任务/完成任务时更新
func (f *Function) SetInOptimizationQueue(in bool) { f.inOptimizationQueue = in }

// IsMarkedForOptimization 是否已标记为非并发优化
func (f *Function) IsMarkedForOptimization() bool {
	return f.marked && f.markedMode == ConcurrencyModeNotConcurrent
}

// IsMarkedForConcurrentOptimization 是否已标记为并发优化
func (f *Function) IsMarkedForConcurrentOptimization() bool {
	return f.marked && f.markedMode == ConcurrencyModeConcurrent
}

// MarkedKind 被标记的目标层级
func (f *Function) MarkedKind() (CodeKind, bool) {
	return f.markedKind, f.marked
}

// MarkForOptimization 标记函数等待指定层级的优化编译
// 优化被禁用的函数不允许标记
func (f *Function) MarkForOptimization(kind CodeKind, mode ConcurrencyMode) {
	if f.shared.OptimizationDisabled() {
		panic(fmt.Sprintf("objects: %s has optimization disabled", f.shared.Name()))
	}
	if !kind.IsOptimized() {
		panic(fmt.Sprintf("objects: cannot mark for %s", kind))
	}
	f.marked = true
	f.markedKind = kind
	f.markedMode = mode
}

// ClearOptimizationMarker 编译服务领取任务后清除标记
func (f *Function) ClearOptimizationMarker() {
	f.marked = false
}

// ---------------------------------------------------------------------------
// 已安装代码
// ---------------------------------------------------------------------------

// HasAvailableOptimizedCode 是否已有可用的优化代码
func (f *Function) HasAvailableOptimizedCode() bool { return f.optimizedCode != nil }

// SetOptimizedCode 安装优化代码
func (f *Function) SetOptimizedCode(code *Code) {
	if code != nil && !code.Kind().IsOptimized() {
		panic("objects: not an optimized code object")
	}
	f.optimizedCode = code
}

// HasBaselineCode 是否已有基线代码
func (f *Function) HasBaselineCode() bool { return f.baselineCode != nil }

// SetBaselineCode 安装基线代码
func (f *Function) SetBaselineCode(code *Code) { f.baselineCode = code }
