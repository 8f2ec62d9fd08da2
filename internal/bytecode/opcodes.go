package bytecode

import "fmt"

// OpCode 操作码类型
type OpCode byte

const (
	// 栈操作
	OpPush OpCode = iota // 压入常量 (index: u16)
	OpPop                // 弹出栈顶

	// 局部变量操作
	OpLoadLocal  // 加载局部变量 (index: u16)
	OpStoreLocal // 存储局部变量 (index: u16)

	// 常量
	OpNull // 压入 null
	OpTrue // 压入 true
	OpZero // 压入 0

	// 算术运算
	OpAdd // 加法
	OpSub // 减法
	OpMul // 乘法
	OpDiv // 除法

	// 比较运算
	OpEq // 等于
	OpLt // 小于

	// 跳转指令
	OpJump        // 无条件前向跳转 (delta: u16)
	OpJumpIfFalse // 条件为假时跳转 (delta: u16)
	OpJumpLoop    // 循环回边，向后跳转 (delta: u16, loopDepth: u16)

	// 函数调用
	OpCall   // 调用函数 (argCount: u16)
	OpReturn // 返回

	opCount // 哨兵，必须放在最后
)

// OperandScale 操作数宽度档位
// 解释器为每个 (操作码, 档位) 组合分发一个独立的处理器
type OperandScale byte

const (
	OperandScaleSingle    OperandScale = 1 // u8 操作数
	OperandScaleDouble    OperandScale = 2 // u16 操作数
	OperandScaleQuadruple OperandScale = 4 // u32 操作数
)

// operandCounts 每个操作码的操作数个数
var operandCounts = [opCount]int{
	OpPush:        1,
	OpPop:         0,
	OpLoadLocal:   1,
	OpStoreLocal:  1,
	OpNull:        0,
	OpTrue:        0,
	OpZero:        0,
	OpAdd:         0,
	OpSub:         0,
	OpMul:         0,
	OpDiv:         0,
	OpEq:          0,
	OpLt:          0,
	OpJump:        1,
	OpJumpIfFalse: 1,
	OpJumpLoop:    2,
	OpCall:        1,
	OpReturn:      0,
}

// opNames 操作码名称
var opNames = [opCount]string{
	OpPush:        "Push",
	OpPop:         "Pop",
	OpLoadLocal:   "LoadLocal",
	OpStoreLocal:  "StoreLocal",
	OpNull:        "Null",
	OpTrue:        "True",
	OpZero:        "Zero",
	OpAdd:         "Add",
	OpSub:         "Sub",
	OpMul:         "Mul",
	OpDiv:         "Div",
	OpEq:          "Eq",
	OpLt:          "Lt",
	OpJump:        "Jump",
	OpJumpIfFalse: "JumpIfFalse",
	OpJumpLoop:    "JumpLoop",
	OpCall:        "Call",
	OpReturn:      "Return",
}

// OperandCount 返回操作码的操作数个数
func (op OpCode) OperandCount() int {
	if op >= opCount {
		panic(fmt.Sprintf("bytecode: invalid opcode %d", op))
	}
	return operandCounts[op]
}

// IsValid 检查操作码是否合法
func (op OpCode) IsValid() bool {
	return op < opCount
}

// IsJump 是否是跳转指令
func (op OpCode) IsJump() bool {
	return op == OpJump || op == OpJumpIfFalse || op == OpJumpLoop
}

func (op OpCode) String() string {
	if op >= opCount {
		return fmt.Sprintf("OpCode(%d)", byte(op))
	}
	return opNames[op]
}

// FormatWithScale 格式化 (操作码, 档位) 组合
// 用于给字节码处理器命名，例如 "JumpLoop.Double"
func FormatWithScale(op OpCode, scale OperandScale) string {
	var s string
	switch scale {
	case OperandScaleSingle:
		s = "Single"
	case OperandScaleDouble:
		s = "Double"
	case OperandScaleQuadruple:
		s = "Quadruple"
	default:
		panic(fmt.Sprintf("bytecode: invalid operand scale %d", scale))
	}
	return op.String() + "." + s
}

// OpCodeCount 操作码总数
func OpCodeCount() int { return int(opCount) }
