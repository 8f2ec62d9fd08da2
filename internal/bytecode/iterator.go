package bytecode

import (
	"encoding/binary"
	"fmt"
)

// ============================================================================
// 字节码迭代器
// ============================================================================

// 指令编码：1 字节操作码 + 每个操作数 2 字节（小端 u16）

const operandSize = 2

// Iterator 字节码数组的顺序/随机访问迭代器
type Iterator struct {
	array  *Array
	offset int
}

// NewIterator 创建迭代器，定位到偏移 0
func NewIterator(array *Array) *Iterator {
	return &Iterator{array: array}
}

// SetOffset 定位到指定偏移
// 偏移必须落在指令边界上，越界是编程错误
func (it *Iterator) SetOffset(offset int) {
	if offset < 0 || offset >= it.array.Length() {
		panic(fmt.Sprintf("bytecode: iterator offset %d out of range [0,%d)",
			offset, it.array.Length()))
	}
	it.offset = offset
}

// Offset 当前偏移
func (it *Iterator) Offset() int { return it.offset }

// Done 是否已走到末尾
func (it *Iterator) Done() bool { return it.offset >= it.array.Length() }

// Current 当前指令的操作码
func (it *Iterator) Current() OpCode {
	op := OpCode(it.array.At(it.offset))
	if !op.IsValid() {
		panic(fmt.Sprintf("bytecode: invalid opcode %d at offset %d",
			it.array.At(it.offset), it.offset))
	}
	return op
}

// CurrentSize 当前指令的编码长度
func (it *Iterator) CurrentSize() int {
	return 1 + it.Current().OperandCount()*operandSize
}

// Next 前进到下一条指令
func (it *Iterator) Next() {
	it.offset += it.CurrentSize()
}

// ImmediateOperand 读取当前指令的第 i 个立即操作数
// 调用方必须保证当前操作码确实带有第 i 个操作数；
// 对 OSR 代码缓存记录的偏移取操作数 1 时，依赖缓存只记录 JumpLoop 偏移这一前置条件
func (it *Iterator) ImmediateOperand(i int) int {
	op := it.Current()
	if i < 0 || i >= op.OperandCount() {
		panic(fmt.Sprintf("bytecode: %s has no operand %d", op, i))
	}
	pos := it.offset + 1 + i*operandSize
	return int(binary.LittleEndian.Uint16(it.sliceAt(pos)))
}

// JumpTargetOffset 当前跳转指令的目标偏移
// JumpLoop 向后跳（目标 = 当前偏移 - delta），其余跳转向前
func (it *Iterator) JumpTargetOffset() int {
	op := it.Current()
	if !op.IsJump() {
		panic(fmt.Sprintf("bytecode: %s is not a jump", op))
	}
	delta := it.ImmediateOperand(0)
	if op == OpJumpLoop {
		return it.offset - delta
	}
	return it.offset + delta
}

func (it *Iterator) sliceAt(pos int) []byte {
	if pos+operandSize > it.array.Length() {
		panic("bytecode: truncated operand")
	}
	buf := make([]byte, operandSize)
	for i := 0; i < operandSize; i++ {
		buf[i] = it.array.At(pos + i)
	}
	return buf
}
