package builtins

import "sort"

// ============================================================================
// 嵌入代码块
// ============================================================================

// 各种类桩的指令区长度
// 布局是确定性的：按编号顺序紧密排布在基址之后
var kindInstructionSizes = map[Kind]int{
	KindNative:          32,
	KindJSStub:          128,
	KindStub:            96,
	KindStatefulStub:    112,
	KindHandler:         80,
	KindBytecodeHandler: 64,
	KindASM:             160,
}

// EmbeddedBlob 进程内只读的内置指令区描述
// 指令起始地址按编号排序，可二分检索
type EmbeddedBlob struct {
	base   uintptr
	starts [BuiltinCount]uintptr
	sizes  [BuiltinCount]int
}

// NewEmbeddedBlob 以给定基址计算布局
func NewEmbeddedBlob(base uintptr) *EmbeddedBlob {
	blob := &EmbeddedBlob{base: base}
	cursor := base
	for b := BuiltinFirst; b <= BuiltinLast; b++ {
		size := kindInstructionSizes[KindOf(b)]
		blob.starts[b] = cursor
		blob.sizes[b] = size
		cursor += uintptr(size)
	}
	return blob
}

// Base 基址
func (e *EmbeddedBlob) Base() uintptr { return e.base }

// InstructionStartOf 指令区起始地址
func (e *EmbeddedBlob) InstructionStartOf(b Builtin) uintptr {
	checkID(b)
	return e.starts[b]
}

// InstructionSizeOf 指令区长度
func (e *EmbeddedBlob) InstructionSizeOf(b Builtin) int {
	checkID(b)
	return e.sizes[b]
}

// TryLookupCode 二分检索 pc 落在哪个内置的指令区内
func (e *EmbeddedBlob) TryLookupCode(pc uintptr) (Builtin, bool) {
	last := int(BuiltinLast)
	if pc < e.starts[0] || pc >= e.starts[last]+uintptr(e.sizes[last]) {
		return 0, false
	}
	// 第一个 start > pc 的编号的前一个
	i := sort.Search(BuiltinCount, func(i int) bool { return e.starts[i] > pc }) - 1
	b := Builtin(i)
	if pc < e.starts[b]+uintptr(e.sizes[b]) {
		return b, true
	}
	return 0, false
}
