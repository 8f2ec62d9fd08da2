package objects

import (
	"go.uber.org/atomic"

	"github.com/tangzhangming/vela/internal/bytecode"
)

// ============================================================================
// 共享函数信息
// ============================================================================

// OSRCodeCacheState 共享函数信息在 OSR 代码缓存中的状态
type OSRCodeCacheState uint8

const (
	OSRNotCached         OSRCodeCacheState = iota // 缓存中没有条目
	OSRCachedWithEntries                          // 缓存中至少有一个条目
)

// SharedFunctionInfo 同一源函数的所有闭包共享的信息
type SharedFunctionInfo struct {
	name     string
	bytecode *bytecode.Array

	// 内部桩函数为 false，OSR 只对用户脚本函数开放
	isUserScript bool

	// 之前的优化尝试失败后由编译服务置位，可能来自后台线程
	optimizationDisabled atomic.Bool

	osrCodeCacheState OSRCodeCacheState
	compiled          bool
}

// NewSharedFunctionInfo 创建共享函数信息
func NewSharedFunctionInfo(name string, code *bytecode.Array, isUserScript bool) *SharedFunctionInfo {
	return &SharedFunctionInfo{
		name:         name,
		bytecode:     code,
		isUserScript: isUserScript,
		compiled:     code != nil,
	}
}

// Name 函数名
func (s *SharedFunctionInfo) Name() string { return s.name }

// HasBytecode 是否已有字节码
func (s *SharedFunctionInfo) HasBytecode() bool { return s.bytecode != nil }

// Bytecode 字节码数组
func (s *SharedFunctionInfo) Bytecode() *bytecode.Array {
	if s.bytecode == nil {
		panic("objects: shared function info has no bytecode")
	}
	return s.bytecode
}

// IsUserScript 是否是用户脚本函数
func (s *SharedFunctionInfo) IsUserScript() bool { return s.isUserScript }

// OptimizationDisabled 优化是否被永久禁用
func (s *SharedFunctionInfo) OptimizationDisabled() bool {
	return s.optimizationDisabled.Load()
}

// DisableOptimization 禁用优化
// 编译服务在永久性编译失败后调用，之后的 tick 会短路
func (s *SharedFunctionInfo) DisableOptimization() {
	s.optimizationDisabled.Store(true)
}

// OSRCodeCacheState 当前 OSR 缓存状态
func (s *SharedFunctionInfo) OSRCodeCacheState() OSRCodeCacheState {
	return s.osrCodeCacheState
}

func (s *SharedFunctionInfo) setOSRCodeCacheState(state OSRCodeCacheState) {
	s.osrCodeCacheState = state
}

// IsCompiled 是否已编译出字节码
func (s *SharedFunctionInfo) IsCompiled() bool { return s.compiled }
