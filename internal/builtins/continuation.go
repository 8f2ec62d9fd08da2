package builtins

import "fmt"

// ============================================================================
// 续体字节码偏移
// ============================================================================

// FirstContinuationOffset 续体偏移的基准常量
// 中层优化代码的续体帧用 偏移 = 基准 + 编号 来记录将要恢复进入的内置
const FirstContinuationOffset = 1 << 16

func checkContinuationKind(b Builtin) {
	switch KindOf(b) {
	case KindJSStub, KindStub, KindStatefulStub:
	default:
		panic(fmt.Sprintf("builtins: %s (%s) cannot be a continuation target",
			Name(b), KindOf(b)))
	}
}

// ContinuationBytecodeOffset 内置编号对应的续体偏移
// 只对优化桩种类有定义
func ContinuationBytecodeOffset(b Builtin) int {
	checkContinuationKind(b)
	return FirstContinuationOffset + ToInt(b)
}

// BuiltinFromContinuationOffset 续体偏移还原为内置编号
// 与 ContinuationBytecodeOffset 互为逆映射
func BuiltinFromContinuationOffset(offset int) Builtin {
	b := FromInt(offset - FirstContinuationOffset)
	checkContinuationKind(b)
	return b
}
