package objects

import "github.com/tangzhangming/vela/internal/bytecode"

// ============================================================================
// 帧视图
// ============================================================================

// Frame 一个正在执行的帧的只读视图
type Frame interface {
	// Function 帧对应的函数对象
	Function() *Function

	// IsUnoptimized 是否是解释器/基线帧
	IsUnoptimized() bool
}

// UnoptimizedFrame 解释器/基线帧的视图，暴露字节码位置
type UnoptimizedFrame interface {
	Frame

	// BytecodeArray 帧正在执行的字节码数组
	BytecodeArray() *bytecode.Array

	// BytecodeOffset 当前字节码偏移
	BytecodeOffset() int
}

// InterpretedFrame 解释器帧
type InterpretedFrame struct {
	function       *Function
	bytecodeOffset int
}

// NewInterpretedFrame 创建解释器帧视图
func NewInterpretedFrame(function *Function, offset int) *InterpretedFrame {
	return &InterpretedFrame{function: function, bytecodeOffset: offset}
}

func (f *InterpretedFrame) Function() *Function { return f.function }

func (f *InterpretedFrame) IsUnoptimized() bool { return true }

func (f *InterpretedFrame) BytecodeArray() *bytecode.Array {
	return f.function.Shared().Bytecode()
}

func (f *InterpretedFrame) BytecodeOffset() int { return f.bytecodeOffset }

// SetBytecodeOffset 解释器推进时更新偏移
func (f *InterpretedFrame) SetBytecodeOffset(offset int) { f.bytecodeOffset = offset }

// OptimizedFrame 优化代码帧
type OptimizedFrame struct {
	function *Function
}

// NewOptimizedFrame 创建优化帧视图
func NewOptimizedFrame(function *Function) *OptimizedFrame {
	return &OptimizedFrame{function: function}
}

func (f *OptimizedFrame) Function() *Function { return f.function }

func (f *OptimizedFrame) IsUnoptimized() bool { return false }
