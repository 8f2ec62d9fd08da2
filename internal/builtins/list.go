package builtins

import (
	"fmt"

	"github.com/tangzhangming/vela/internal/bytecode"
)

// ============================================================================
// 内置编号全集
// ============================================================================

// Builtin 内置编号
// 编号密集且稳定：tier0 桩占据前缀，字节码处理器占据尾部
type Builtin int

const (
	// tier0 前缀：生成代码最早需要的入口
	BuiltinInterpreterEntry Builtin = iota
	BuiltinBaselineEntry
	BuiltinCompileLazy
	BuiltinAdaptorTrampoline

	// 原生入口
	BuiltinIllegal
	BuiltinHandleNativeCall
	BuiltinFunctionConstructor

	// 调用家族与取原始值家族（桩调用约定）
	BuiltinCallFunctionReceiverIsNullOrUndefined
	BuiltinCallFunctionReceiverIsNotNullOrUndefined
	BuiltinCallFunctionReceiverIsAny
	BuiltinCallReceiverIsNullOrUndefined
	BuiltinCallReceiverIsNotNullOrUndefined
	BuiltinCallReceiverIsAny
	BuiltinNonPrimitiveToPrimitiveDefault
	BuiltinNonPrimitiveToPrimitiveNumber
	BuiltinNonPrimitiveToPrimitiveString
	BuiltinOrdinaryToPrimitiveNumber
	BuiltinOrdinaryToPrimitiveString

	// 带状态的桩
	BuiltinToNumber
	BuiltinToString
	BuiltinStringAdd

	// 脚本调用约定的桩
	BuiltinStringIndexOf
	BuiltinNumberToString
	BuiltinDataViewGetInt8
	BuiltinDataViewGetUint8
	BuiltinDataViewGetInt16
	BuiltinDataViewGetUint16
	BuiltinDataViewGetInt32
	BuiltinDataViewGetUint32
	BuiltinDataViewGetFloat32
	BuiltinDataViewGetFloat64
	BuiltinDataViewGetBigInt64
	BuiltinDataViewGetBigUint64
	BuiltinDataViewSetInt8
	BuiltinDataViewSetUint8
	BuiltinDataViewSetInt16
	BuiltinDataViewSetUint16
	BuiltinDataViewSetInt32
	BuiltinDataViewSetUint32
	BuiltinDataViewSetFloat32
	BuiltinDataViewSetFloat64
	BuiltinDataViewSetBigInt64
	BuiltinDataViewSetBigUint64

	// 内联缓存处理器
	BuiltinLoadFieldHandler
	BuiltinStoreFieldHandler
	BuiltinLoadElementHandler

	// 字节码处理器尾部（密集，按操作码再按档位）
	BuiltinLoadLocalHandler
	BuiltinLoadLocalWideHandler
	BuiltinLoadLocalExtraWideHandler
	BuiltinAddHandler
	BuiltinAddWideHandler
	BuiltinAddExtraWideHandler
	BuiltinJumpLoopHandler
	BuiltinJumpLoopWideHandler
	BuiltinJumpLoopExtraWideHandler
	BuiltinCallHandler
	BuiltinCallWideHandler
	BuiltinCallExtraWideHandler
	BuiltinReturnHandler
	BuiltinReturnWideHandler
	BuiltinReturnExtraWideHandler

	builtinAfterLast
)

// 区段边界
const (
	BuiltinFirst                = BuiltinInterpreterEntry
	BuiltinLastTier0            = BuiltinAdaptorTrampoline
	BuiltinFirstBytecodeHandler = BuiltinLoadLocalHandler
	BuiltinLast                 = builtinAfterLast - 1

	// BuiltinCount 内置总数
	BuiltinCount = int(builtinAfterLast)

	// Tier0Count tier0 前缀长度
	Tier0Count = int(BuiltinLastTier0) + 1
)

// builtinMetadata 目录本体，下标即编号
// 顺序必须与上面的编号声明一致，init 里做一致性校验
var builtinMetadata = [BuiltinCount]metadata{
	declASM("InterpreterEntry"),
	declASM("BaselineEntry"),
	declStub("CompileLazy"),
	declASM("AdaptorTrampoline"),

	declNative("Illegal", nativeEntryIllegal),
	declNative("HandleNativeCall", nativeEntryHandleNativeCall),
	declNative("FunctionConstructor", nativeEntryFunctionConstructor),

	declStub("CallFunction_ReceiverIsNullOrUndefined"),
	declStub("CallFunction_ReceiverIsNotNullOrUndefined"),
	declStub("CallFunction_ReceiverIsAny"),
	declStub("Call_ReceiverIsNullOrUndefined"),
	declStub("Call_ReceiverIsNotNullOrUndefined"),
	declStub("Call_ReceiverIsAny"),
	declStub("NonPrimitiveToPrimitive_Default"),
	declStub("NonPrimitiveToPrimitive_Number"),
	declStub("NonPrimitiveToPrimitive_String"),
	declStub("OrdinaryToPrimitive_Number"),
	declStub("OrdinaryToPrimitive_String"),

	declStatefulStub("ToNumber"),
	declStatefulStub("ToString"),
	declStatefulStub("StringAdd"),

	declJSStub("StringIndexOf", 2),
	declJSStub("NumberToString", 1),
	declJSStub("DataViewGetInt8", 1),
	declJSStub("DataViewGetUint8", 1),
	declJSStub("DataViewGetInt16", 2),
	declJSStub("DataViewGetUint16", 2),
	declJSStub("DataViewGetInt32", 2),
	declJSStub("DataViewGetUint32", 2),
	declJSStub("DataViewGetFloat32", 2),
	declJSStub("DataViewGetFloat64", 2),
	declJSStub("DataViewGetBigInt64", 2),
	declJSStub("DataViewGetBigUint64", 2),
	declJSStub("DataViewSetInt8", 2),
	declJSStub("DataViewSetUint8", 2),
	declJSStub("DataViewSetInt16", 3),
	declJSStub("DataViewSetUint16", 3),
	declJSStub("DataViewSetInt32", 3),
	declJSStub("DataViewSetUint32", 3),
	declJSStub("DataViewSetFloat32", 3),
	declJSStub("DataViewSetFloat64", 3),
	declJSStub("DataViewSetBigInt64", 3),
	declJSStub("DataViewSetBigUint64", 3),

	declHandler("LoadFieldHandler"),
	declHandler("StoreFieldHandler"),
	declHandler("LoadElementHandler"),

	declBytecodeHandler("LoadLocalHandler", bytecode.OpLoadLocal, bytecode.OperandScaleSingle),
	declBytecodeHandler("LoadLocalWideHandler", bytecode.OpLoadLocal, bytecode.OperandScaleDouble),
	declBytecodeHandler("LoadLocalExtraWideHandler", bytecode.OpLoadLocal, bytecode.OperandScaleQuadruple),
	declBytecodeHandler("AddHandler", bytecode.OpAdd, bytecode.OperandScaleSingle),
	declBytecodeHandler("AddWideHandler", bytecode.OpAdd, bytecode.OperandScaleDouble),
	declBytecodeHandler("AddExtraWideHandler", bytecode.OpAdd, bytecode.OperandScaleQuadruple),
	declBytecodeHandler("JumpLoopHandler", bytecode.OpJumpLoop, bytecode.OperandScaleSingle),
	declBytecodeHandler("JumpLoopWideHandler", bytecode.OpJumpLoop, bytecode.OperandScaleDouble),
	declBytecodeHandler("JumpLoopExtraWideHandler", bytecode.OpJumpLoop, bytecode.OperandScaleQuadruple),
	declBytecodeHandler("CallHandler", bytecode.OpCall, bytecode.OperandScaleSingle),
	declBytecodeHandler("CallWideHandler", bytecode.OpCall, bytecode.OperandScaleDouble),
	declBytecodeHandler("CallExtraWideHandler", bytecode.OpCall, bytecode.OperandScaleQuadruple),
	declBytecodeHandler("ReturnHandler", bytecode.OpReturn, bytecode.OperandScaleSingle),
	declBytecodeHandler("ReturnWideHandler", bytecode.OpReturn, bytecode.OperandScaleDouble),
	declBytecodeHandler("ReturnExtraWideHandler", bytecode.OpReturn, bytecode.OperandScaleQuadruple),
}

func init() {
	// 字节码处理器必须构成密集尾部
	for b := BuiltinFirst; b <= BuiltinLast; b++ {
		isHandler := builtinMetadata[b].kind == KindBytecodeHandler
		inTail := b >= BuiltinFirstBytecodeHandler
		if isHandler != inTail {
			panic(fmt.Sprintf("builtins: %s misplaced relative to bytecode handler tail",
				builtinMetadata[b].name))
		}
	}
	// tier0 前缀只允许 ASM/Stub 入口
	for b := BuiltinFirst; b <= BuiltinLastTier0; b++ {
		switch builtinMetadata[b].kind {
		case KindASM, KindStub:
		default:
			panic(fmt.Sprintf("builtins: tier0 builtin %s has kind %s",
				builtinMetadata[b].name, builtinMetadata[b].kind))
		}
	}
}

// IsBuiltinID 编号是否落在合法区间
func IsBuiltinID(id int) bool {
	return id >= int(BuiltinFirst) && id <= int(BuiltinLast)
}

// IsTier0 是否属于 tier0 前缀
func IsTier0(b Builtin) bool {
	return b >= BuiltinFirst && b <= BuiltinLastTier0
}

// FromInt 整数转内置编号，越界是编程错误
func FromInt(id int) Builtin {
	if !IsBuiltinID(id) {
		panic(fmt.Sprintf("builtins: invalid builtin id %d", id))
	}
	return Builtin(id)
}

// ToInt 内置编号转整数
func ToInt(b Builtin) int { return int(b) }

func checkID(b Builtin) {
	if !IsBuiltinID(int(b)) {
		panic(fmt.Sprintf("builtins: invalid builtin id %d", int(b)))
	}
}

// Name 显示名
func Name(b Builtin) string {
	checkID(b)
	return builtinMetadata[b].name
}

// KindOf 种类
func KindOf(b Builtin) Kind {
	checkID(b)
	return builtinMetadata[b].kind
}

// KindNameOf 种类名
func KindNameOf(b Builtin) string {
	return KindOf(b).String()
}

// IsNative 是否是原生入口
func IsNative(b Builtin) bool {
	return KindOf(b) == KindNative
}

// CppEntryOf 原生入口地址
// 只对 KindNative 有定义
func CppEntryOf(b Builtin) uintptr {
	if !IsNative(b) {
		panic(fmt.Sprintf("builtins: %s is not a native builtin", Name(b)))
	}
	return builtinMetadata[b].data.cppEntry
}

// StackParameterCount 栈上参数个数
// 只对 KindJSStub 有定义
func StackParameterCount(b Builtin) int {
	if KindOf(b) != KindJSStub {
		panic(fmt.Sprintf("builtins: %s has no JS parameter count", Name(b)))
	}
	return int(builtinMetadata[b].data.parameterCount)
}

// BytecodeAndScaleOf 字节码处理器对应的 (操作码, 档位)
// 只对 KindBytecodeHandler 有定义
func BytecodeAndScaleOf(b Builtin) (bytecode.OpCode, bytecode.OperandScale) {
	if KindOf(b) != KindBytecodeHandler {
		panic(fmt.Sprintf("builtins: %s is not a bytecode handler", Name(b)))
	}
	bs := builtinMetadata[b].data.bytecodeAndScale
	return bs.bytecode, bs.scale
}
