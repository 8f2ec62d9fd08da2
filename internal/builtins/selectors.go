package builtins

import (
	"fmt"

	"github.com/tangzhangming/vela/internal/objects"
)

// ============================================================================
// 多态内置的变体选择
// ============================================================================

// ConvertReceiverMode 调用点对 receiver 的已知信息
type ConvertReceiverMode uint8

const (
	ReceiverIsNullOrUndefined    ConvertReceiverMode = iota // receiver 一定是 null/undefined
	ReceiverIsNotNullOrUndefined                            // receiver 一定不是 null/undefined
	ReceiverIsAny                                           // 未知
)

// ToPrimitiveHint 取原始值的类型提示
type ToPrimitiveHint uint8

const (
	ToPrimitiveDefault ToPrimitiveHint = iota
	ToPrimitiveNumber
	ToPrimitiveString
)

// OrdinaryToPrimitiveHint 常规取原始值的方法顺序提示
type OrdinaryToPrimitiveHint uint8

const (
	OrdinaryToPrimitiveHintNumber OrdinaryToPrimitiveHint = iota
	OrdinaryToPrimitiveHintString
)

// CallFunction 已知目标可调用时的调用桩
func (bt *Builtins) CallFunction(mode ConvertReceiverMode) *objects.Code {
	switch mode {
	case ReceiverIsNullOrUndefined:
		return bt.CodeHandle(BuiltinCallFunctionReceiverIsNullOrUndefined)
	case ReceiverIsNotNullOrUndefined:
		return bt.CodeHandle(BuiltinCallFunctionReceiverIsNotNullOrUndefined)
	case ReceiverIsAny:
		return bt.CodeHandle(BuiltinCallFunctionReceiverIsAny)
	}
	panic(fmt.Sprintf("builtins: unknown receiver mode %d", mode))
}

// Call 通用调用桩
func (bt *Builtins) Call(mode ConvertReceiverMode) *objects.Code {
	switch mode {
	case ReceiverIsNullOrUndefined:
		return bt.CodeHandle(BuiltinCallReceiverIsNullOrUndefined)
	case ReceiverIsNotNullOrUndefined:
		return bt.CodeHandle(BuiltinCallReceiverIsNotNullOrUndefined)
	case ReceiverIsAny:
		return bt.CodeHandle(BuiltinCallReceiverIsAny)
	}
	panic(fmt.Sprintf("builtins: unknown receiver mode %d", mode))
}

// NonPrimitiveToPrimitive 对象取原始值桩
func (bt *Builtins) NonPrimitiveToPrimitive(hint ToPrimitiveHint) *objects.Code {
	switch hint {
	case ToPrimitiveDefault:
		return bt.CodeHandle(BuiltinNonPrimitiveToPrimitiveDefault)
	case ToPrimitiveNumber:
		return bt.CodeHandle(BuiltinNonPrimitiveToPrimitiveNumber)
	case ToPrimitiveString:
		return bt.CodeHandle(BuiltinNonPrimitiveToPrimitiveString)
	}
	panic(fmt.Sprintf("builtins: unknown to-primitive hint %d", hint))
}

// OrdinaryToPrimitive 常规取原始值桩
func (bt *Builtins) OrdinaryToPrimitive(hint OrdinaryToPrimitiveHint) *objects.Code {
	switch hint {
	case OrdinaryToPrimitiveHintNumber:
		return bt.CodeHandle(BuiltinOrdinaryToPrimitiveNumber)
	case OrdinaryToPrimitiveHintString:
		return bt.CodeHandle(BuiltinOrdinaryToPrimitiveString)
	}
	panic(fmt.Sprintf("builtins: unknown ordinary-to-primitive hint %d", hint))
}
