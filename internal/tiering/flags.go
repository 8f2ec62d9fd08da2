// Package tiering 实现自适应分层控制器：
// 基于每函数的剖析计数，在中断 tick 边界上决定函数何时、升到哪个执行层级，
// 以及是否在循环回边上武装栈上替换
package tiering

// ============================================================================
// 全局配置
// ============================================================================

// Flags 分层控制器的全局配置
// 启动后不再变化，构造控制器时整体传入
type Flags struct {
	// 层级开关
	UseOptimizer bool `toml:"use_optimizer"` // 全局优化总开关
	UseBaseline  bool `toml:"use_baseline"`  // 允许基线编译
	UseMidTier   bool `toml:"use_mid_tier"`  // 未优化函数先升到中层
	UseOSR       bool `toml:"use_osr"`       // 允许栈上替换
	AlwaysOSR    bool `toml:"always_osr"`    // 每个未优化帧都以最大嵌套武装 OSR

	// 反馈向量
	LazyFeedbackAllocation bool `toml:"lazy_feedback_allocation"` // 首个 tick 时才分配向量

	// 基线批量编译
	BaselineBatchCompilation bool `toml:"baseline_batch_compilation"`

	// 确定性测试挡板：启发式分层只对允许清单上的函数生效
	TestRunner bool `toml:"test_runner"`

	// 动态函数构造门禁
	AllowUnsafeFunctionConstructor bool `toml:"allow_unsafe_function_constructor"`

	// 诊断输出
	TraceOpt        bool `toml:"trace_opt"`
	TraceOptVerbose bool `toml:"trace_opt_verbose"`
	TraceOSR        bool `toml:"trace_osr"`

	// 中断预算
	InterruptBudget                            int `toml:"interrupt_budget"`
	InterruptBudgetForMidTier                  int `toml:"interrupt_budget_for_mid_tier"`
	InterruptBudgetForFeedbackAllocation       int `toml:"interrupt_budget_for_feedback_allocation"`
	InterruptBudgetFactorForFeedbackAllocation int `toml:"interrupt_budget_factor_for_feedback_allocation"`

	// 升层判定
	TicksBeforeOptimization      int `toml:"ticks_before_optimization"`
	BytecodeSizeAllowancePerTick int `toml:"bytecode_size_allowance_per_tick"`
	MaxBytecodeSizeForEarlyOpt   int `toml:"max_bytecode_size_for_early_opt"`
}

// DefaultFlags 默认配置
func DefaultFlags() Flags {
	return Flags{
		UseOptimizer:             true,
		UseBaseline:              true,
		UseMidTier:               false,
		UseOSR:                   true,
		LazyFeedbackAllocation:   true,
		BaselineBatchCompilation: true,

		InterruptBudget:                            132 * 1024,
		InterruptBudgetForMidTier:                  40 * 1024,
		InterruptBudgetForFeedbackAllocation:       940,
		InterruptBudgetFactorForFeedbackAllocation: 8,

		TicksBeforeOptimization:      3,
		BytecodeSizeAllowancePerTick: 1200,
		MaxBytecodeSizeForEarlyOpt:   90,
	}
}
