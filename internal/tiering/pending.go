package tiering

import "github.com/tangzhangming/vela/internal/objects"

// ============================================================================
// 待优化允许清单
// ============================================================================

// PendingOptimizationTable 确定性测试用的允许清单
// 测试挡板开启时，只有清单上的函数才允许启发式分层，
// 其余函数必须由测试指令手工标记
// 单线程使用
type PendingOptimizationTable struct {
	allowed map[*objects.SharedFunctionInfo]struct{}
}

// NewPendingOptimizationTable 创建空清单
func NewPendingOptimizationTable() *PendingOptimizationTable {
	return &PendingOptimizationTable{
		allowed: make(map[*objects.SharedFunctionInfo]struct{}),
	}
}

// PrepareForOptimization 把函数放上清单
func (t *PendingOptimizationTable) PrepareForOptimization(function *objects.Function) {
	t.allowed[function.Shared()] = struct{}{}
}

// IsHeuristicOptimizationAllowed 函数是否允许启发式分层
func (t *PendingOptimizationTable) IsHeuristicOptimizationAllowed(function *objects.Function) bool {
	_, ok := t.allowed[function.Shared()]
	return ok
}
