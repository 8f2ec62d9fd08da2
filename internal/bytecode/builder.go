package bytecode

import "encoding/binary"

// ============================================================================
// 字节码构建器
// ============================================================================

// Builder 顺序拼装字节码数组
type Builder struct {
	code []byte
}

// NewBuilder 创建构建器
func NewBuilder() *Builder {
	return &Builder{}
}

// Emit 追加一条指令
// 操作数个数必须与操作码匹配
func (b *Builder) Emit(op OpCode, operands ...int) int {
	if len(operands) != op.OperandCount() {
		panic("bytecode: operand count mismatch for " + op.String())
	}
	offset := len(b.code)
	b.code = append(b.code, byte(op))
	for _, operand := range operands {
		var buf [operandSize]byte
		binary.LittleEndian.PutUint16(buf[:], uint16(operand))
		b.code = append(b.code, buf[:]...)
	}
	return offset
}

// EmitJumpLoop 追加一条回边指令
// target 必须是已发射指令的偏移，loopDepth 是该回边的静态循环深度
func (b *Builder) EmitJumpLoop(target, loopDepth int) int {
	offset := len(b.code)
	if target > offset {
		panic("bytecode: JumpLoop target must be backward")
	}
	return b.Emit(OpJumpLoop, offset-target, loopDepth)
}

// Offset 下一条指令将要落在的偏移
func (b *Builder) Offset() int { return len(b.code) }

// Build 产出字节码数组
func (b *Builder) Build() *Array {
	return NewArray(b.code)
}

// PadTo 用 Pop 指令填充到指定长度
// 测试和基准里用来构造指定大小的函数
func (b *Builder) PadTo(length int) {
	for len(b.code) < length {
		b.code = append(b.code, byte(OpPop))
	}
}
