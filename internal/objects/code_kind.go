// Package objects 定义分层执行涉及的运行时对象模型：
// 函数对象、共享函数信息、反馈向量、代码对象与帧视图
package objects

import "fmt"

// ============================================================================
// 代码层级
// ============================================================================

// CodeKind 一个函数当前可执行代码的质量层级
type CodeKind uint8

const (
	CodeKindInterpreted CodeKind = iota // 解释执行
	CodeKindBaseline                    // 基线编译
	CodeKindMidTier                     // 中层优化编译
	CodeKindTopTier                     // 顶层优化编译
	CodeKindBuiltin                     // 内置桩代码（不参与分层）
)

var codeKindNames = [...]string{
	CodeKindInterpreted: "Interpreted",
	CodeKindBaseline:    "Baseline",
	CodeKindMidTier:     "MidTier",
	CodeKindTopTier:     "TopTier",
	CodeKindBuiltin:     "Builtin",
}

func (k CodeKind) String() string {
	if int(k) < len(codeKindNames) {
		return codeKindNames[k]
	}
	return fmt.Sprintf("CodeKind(%d)", uint8(k))
}

// IsUnoptimizedFunction 是否是未优化的用户函数层级
func (k CodeKind) IsUnoptimizedFunction() bool {
	return k == CodeKindInterpreted || k == CodeKindBaseline
}

// IsOptimized 是否是优化层级
func (k CodeKind) IsOptimized() bool {
	return k == CodeKindMidTier || k == CodeKindTopTier
}

// ============================================================================
// 并发模式
// ============================================================================

// ConcurrencyMode 优化编译请求的并发模式
type ConcurrencyMode uint8

const (
	ConcurrencyModeNotConcurrent ConcurrencyMode = iota // 在执行线程上同步编译
	ConcurrencyModeConcurrent                           // 在后台线程上编译
)

func (m ConcurrencyMode) String() string {
	if m == ConcurrencyModeConcurrent {
		return "concurrent"
	}
	return "not concurrent"
}
