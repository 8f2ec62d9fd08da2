package tiering

import (
	"fmt"

	"github.com/tangzhangming/vela/internal/bytecode"
	"github.com/tangzhangming/vela/internal/objects"
)

// ============================================================================
// 分层控制器
// ============================================================================

// OSR 允许的字节码长度上限：基数 + tick 数 × 每 tick 增量
const (
	osrBytecodeSizeAllowanceBase    = 119
	osrBytecodeSizeAllowancePerTick = 44
)

// Manager 分层控制器
// 只在解释器的执行线程上、在中断 tick 边界运行，从不挂起
type Manager struct {
	flags    Flags
	tracer   *CodeTracer
	compiler Compiler
	frames   FrameSource
	pending  *PendingOptimizationTable
	batch    *BaselineBatchCompiler

	// 自上一个 tick 作用域结束以来是否有内联缓存被改写
	// 由 IC 子系统置位，tick 作用域结束时清零
	anyICChanged bool

	stats Stats
}

// Options 控制器的装配参数
type Options struct {
	Flags    Flags
	Compiler Compiler
	Frames   FrameSource

	// 可选项
	Tracer  *CodeTracer
	Pending *PendingOptimizationTable
	Batch   *BaselineBatchCompiler
}

// NewManager 创建控制器
func NewManager(opts Options) *Manager {
	if opts.Compiler == nil {
		panic("tiering: nil compiler")
	}
	if opts.Frames == nil {
		panic("tiering: nil frame source")
	}
	m := &Manager{
		flags:    opts.Flags,
		tracer:   opts.Tracer,
		compiler: opts.Compiler,
		frames:   opts.Frames,
		pending:  opts.Pending,
		batch:    opts.Batch,
	}
	if m.tracer == nil {
		m.tracer = NewCodeTracer(nil)
	}
	if m.pending == nil {
		m.pending = NewPendingOptimizationTable()
	}
	return m
}

// Flags 生效的配置
func (m *Manager) Flags() Flags { return m.flags }

// NotifyICChanged 内联缓存被改写时由 IC 子系统调用
func (m *Manager) NotifyICChanged() { m.anyICChanged = true }

// ---------------------------------------------------------------------------
// 中断预算
// ---------------------------------------------------------------------------

// InitialInterruptBudget 函数对象分配时的初始预算
func (m *Manager) InitialInterruptBudget() int {
	if m.flags.LazyFeedbackAllocation {
		return m.flags.InterruptBudgetForFeedbackAllocation
	}
	return m.flags.InterruptBudget
}

// InterruptBudgetFor 一次 tick 之后重新发给函数的预算
// 没有向量的函数按字节码长度成比例放大，
// 避免向量分配被小函数的高频 tick 主导
func (m *Manager) InterruptBudgetFor(function *objects.Function) int {
	if function.HasFeedbackVector() {
		if kind, ok := function.GetActiveTier(); ok && m.tiersUpToMidTier(kind) {
			return m.flags.InterruptBudgetForMidTier
		}
		return m.flags.InterruptBudget
	}

	if !function.Shared().IsCompiled() {
		panic(fmt.Sprintf("tiering: %s not compiled", function.Shared().Name()))
	}
	return function.Shared().Bytecode().Length() *
		m.flags.InterruptBudgetFactorForFeedbackAllocation
}

func (m *Manager) tiersUpToMidTier(kind objects.CodeKind) bool {
	return m.flags.UseMidTier && kind.IsUnoptimizedFunction()
}

// ---------------------------------------------------------------------------
// tick 作用域
// ---------------------------------------------------------------------------

// onInterruptTickScope tick 作用域
// 无论以何种路径离开作用域，anyICChanged 都会被清零
type onInterruptTickScope struct {
	manager *Manager
}

func (m *Manager) enterInterruptTickScope() *onInterruptTickScope {
	return &onInterruptTickScope{manager: m}
}

func (s *onInterruptTickScope) release() {
	s.manager.anyICChanged = false
}

// ---------------------------------------------------------------------------
// 中断 tick
// ---------------------------------------------------------------------------

// OnInterruptTick 中断预算下穿时由解释器调用
// 永远正常返回，任何错误都不得外传，解释器随后恢复执行
func (m *Manager) OnInterruptTick(function *objects.Function) {
	m.stats.TicksHandled++

	// 记住进入时有没有向量："无向量的解释执行"自成一档，
	// 只有带着向量到达这里才继续向基线之上升层
	hadFeedbackVector := function.HasFeedbackVector()

	// 保证向量已分配，并为下一个 tick 重置预算
	if hadFeedbackVector {
		function.SetInterruptBudget(m.InterruptBudgetFor(function))
	} else {
		function.CreateAndAttachFeedbackVector()
		// 顺带初始化调用计数。惰性分配的函数 OSR 时需要非零调用计数
		// 才能参与内联
		function.FeedbackVector().SetInvocationCount(1)
		function.SetInterruptBudget(m.InterruptBudgetFor(function))
		m.stats.FeedbackVectorsAllocated++
	}

	if !function.HasFeedbackVector() {
		panic("tiering: feedback vector missing after tick setup")
	}
	if !function.Shared().IsCompiled() || !function.Shared().HasBytecode() {
		panic(fmt.Sprintf("tiering: %s has no bytecode", function.Shared().Name()))
	}

	// 基线决策：低于基线且允许基线编译时，批量入队或同步编译。
	// 基线升层不要求已有向量
	tier, _ := function.GetActiveTier()
	if m.canCompileWithBaseline(function.Shared()) && tier == objects.CodeKindInterpreted {
		if m.flags.BaselineBatchCompilation && m.batch != nil {
			m.batch.EnqueueFunction(function)
			m.stats.BaselineEnqueued++
		} else {
			// 同步编译失败时清掉挂起异常，绝不传进用户代码
			if err := m.compiler.CompileBaseline(function, ClearException); err != nil {
				m.stats.BaselineFailures++
			} else {
				m.stats.BaselineCompiledSync++
			}
		}
	}

	// 第一个 tick 到此为止
	if !hadFeedbackVector {
		return
	}

	// 优化器全局关闭时不再升层
	if !m.flags.UseOptimizer {
		return
	}

	scope := m.enterInterruptTickScope()
	defer scope.release()

	function.FeedbackVector().SaturatingIncrementProfilerTicks()

	frame := m.frames.Top()
	if frame == nil || frame.Function() != function {
		panic("tiering: top frame does not belong to ticking function")
	}
	kind, ok := function.GetActiveTier()
	if !ok {
		panic("tiering: no active tier with feedback vector present")
	}
	m.MaybeOptimizeFrame(function, frame, kind)
}

func (m *Manager) canCompileWithBaseline(shared *objects.SharedFunctionInfo) bool {
	return m.flags.UseBaseline && shared.IsCompiled() && shared.HasBytecode()
}

// ---------------------------------------------------------------------------
// 每帧判定
// ---------------------------------------------------------------------------

// MaybeOptimizeFrame 对当前帧做一次升层判定
func (m *Manager) MaybeOptimizeFrame(function *objects.Function, frame objects.Frame,
	codeKind objects.CodeKind) {

	if function.IsInOptimizationQueue() {
		m.traceInOptimizationQueue(function)
		return
	}

	if m.flags.TestRunner && !m.pending.IsHeuristicOptimizationAllowed(function) {
		m.traceHeuristicOptimizationDisallowed(function)
		return
	}

	if function.Shared().OptimizationDisabled() {
		return
	}

	if frame.IsUnoptimized() {
		unoptimized := frame.(objects.UnoptimizedFrame)
		if m.flags.AlwaysOSR {
			m.AttemptOnStackReplacement(unoptimized, bytecode.MaxLoopNestingMarker)
			// 继续走常规的优化编译
		} else if m.maybeOSR(function, unoptimized) {
			return
		}
	}

	d := m.ShouldOptimize(function, codeKind, frame)
	if d.ShouldOptimize() {
		m.Optimize(function, codeKind, d)
	}
}

// maybeOSR 已有优化标记或优化代码时，OSR 是仅剩的手段
// 返回 true 表示 OSR 路径已经考虑过，不再追加常规升层
func (m *Manager) maybeOSR(function *objects.Function, frame objects.UnoptimizedFrame) bool {
	ticks := function.FeedbackVector().ProfilerTicks()
	if function.IsMarkedForOptimization() ||
		function.IsMarkedForConcurrentOptimization() ||
		function.HasAvailableOptimizedCode() {
		allowance := osrBytecodeSizeAllowanceBase + ticks*osrBytecodeSizeAllowancePerTick
		if function.Shared().Bytecode().Length() <= allowance {
			m.AttemptOnStackReplacement(frame, 1)
		}
		return true
	}
	return false
}

// AttemptOnStackReplacement 抬高帧字节码的 OSR 循环嵌套标记
// 之后任何解释器帧执行到静态循环深度小于标记的回边时，都会让出到 OSR 路径。
// 也被 %OptimizeOsr 之类的显式指令调用
func (m *Manager) AttemptOnStackReplacement(frame objects.UnoptimizedFrame,
	loopNestingLevels int) {

	function := frame.Function()
	shared := function.Shared()
	if !m.flags.UseOSR || !shared.IsUserScript() {
		return
	}

	// 不可优化的代码不做 OSR
	if shared.OptimizationDisabled() {
		return
	}

	if m.flags.TraceOSR {
		m.tracer.Printf("[OSR - arming back edges in %s]\n", shared.Name())
	}

	if !frame.IsUnoptimized() {
		panic("tiering: OSR arming on optimized frame")
	}
	array := frame.BytecodeArray()
	level := array.OSRLoopNestingLevel()
	next := level + loopNestingLevels
	if next > bytecode.MaxLoopNestingMarker {
		next = bytecode.MaxLoopNestingMarker
	}
	array.SetOSRLoopNestingLevel(next)
	m.stats.OSRArmed++
}

// ---------------------------------------------------------------------------
// 升层判定
// ---------------------------------------------------------------------------

// ShouldOptimize 计算升层决策
func (m *Manager) ShouldOptimize(function *objects.Function,
	codeKind objects.CodeKind, frame objects.Frame) OptimizationDecision {

	if kind, ok := function.GetActiveTier(); !ok || kind != codeKind {
		panic("tiering: stale code kind passed to ShouldOptimize")
	}

	if m.tiersUpToMidTier(codeKind) {
		return decisionMidTier()
	}
	if codeKind == objects.CodeKindTopTier {
		// 已在顶层
		return decisionDoNotOptimize()
	}

	array := function.Shared().Bytecode()

	// 共享函数信息已有 OSR 缓存条目时，一旦执行进入缓存回边的循环区间，
	// 就直接按该回边的循环深度武装标记，让随后的 JumpLoop 命中缓存
	if function.Shared().OSRCodeCacheState() > objects.OSRNotCached &&
		frame.IsUnoptimized() {
		currentOffset := frame.(objects.UnoptimizedFrame).BytecodeOffset()
		cache := function.Context().OSRCodeCache()
		iterator := bytecode.NewIterator(array)
		for _, jumpOffset := range cache.GetBytecodeOffsetsFromSFI(function.Shared()) {
			iterator.SetOffset(jumpOffset)
			jumpTargetOffset := iterator.JumpTargetOffset()
			if jumpOffset >= currentOffset && currentOffset >= jumpTargetOffset {
				// 缓存只记录 JumpLoop 偏移，操作数 1 一定是循环深度
				level := iterator.ImmediateOperand(1) + 1
				if level > bytecode.MaxLoopNestingMarker {
					level = bytecode.MaxLoopNestingMarker
				}
				if level > array.OSRLoopNestingLevel() {
					array.SetOSRLoopNestingLevel(level)
				}
				return decisionTopTierHotAndStable()
			}
		}
	}

	// 字节码越长，要求的证据越多
	ticks := function.FeedbackVector().ProfilerTicks()
	ticksForOptimization := m.flags.TicksBeforeOptimization +
		array.Length()/m.flags.BytecodeSizeAllowancePerTick
	if ticks >= ticksForOptimization {
		return decisionTopTierHotAndStable()
	}
	if m.shouldOptimizeAsSmallFunction(array.Length()) {
		// 上个 tick 以来没有内联缓存被改写，且函数足够小，乐观地现在就优化
		return decisionTopTierSmallFunction()
	}
	if m.flags.TraceOptVerbose {
		m.tracer.Printf("[not yet optimizing %s, not enough ticks: %d/%d and ",
			function.Shared().Name(), ticks, ticksForOptimization)
		if m.anyICChanged {
			m.tracer.Printf("ICs changed]\n")
		} else {
			m.tracer.Printf(" too large for small function optimization: %d/%d]\n",
				array.Length(), m.flags.MaxBytecodeSizeForEarlyOpt)
		}
	}
	return decisionDoNotOptimize()
}

func (m *Manager) shouldOptimizeAsSmallFunction(bytecodeSize int) bool {
	return !m.anyICChanged && bytecodeSize < m.flags.MaxBytecodeSizeForEarlyOpt
}

// Optimize 按决策标记函数等待优化编译
func (m *Manager) Optimize(function *objects.Function, codeKind objects.CodeKind,
	d OptimizationDecision) {

	if !d.ShouldOptimize() {
		panic("tiering: Optimize called with do-not-optimize decision")
	}
	m.traceRecompile(function, d)
	function.MarkForOptimization(d.Kind, d.Mode)
	m.stats.OptimizationsRequested++
	if d.Reason == ReasonSmallFunction {
		m.stats.SmallFunctionRequests++
	}
}

// ---------------------------------------------------------------------------
// 诊断输出
// ---------------------------------------------------------------------------

func (m *Manager) traceInOptimizationQueue(function *objects.Function) {
	if m.flags.TraceOptVerbose {
		m.tracer.Printf("[function %s is already in optimization queue]\n",
			function.Shared().Name())
	}
}

func (m *Manager) traceHeuristicOptimizationDisallowed(function *objects.Function) {
	if m.flags.TraceOptVerbose {
		m.tracer.Printf("[function %s has no manual optimization marker]\n",
			function.Shared().Name())
	}
}

func (m *Manager) traceRecompile(function *objects.Function, d OptimizationDecision) {
	if m.flags.TraceOpt {
		m.tracer.Printf("[marking %s for optimized recompilation, reason: %s]\n",
			function.Shared().Name(), d.Reason)
	}
}
