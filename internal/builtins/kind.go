// Package builtins 维护内置桩代码的静态目录：
// 每个内置编号对应的种类、链接描述、入口地址与显示名，
// 以及生成代码查询用的入口表
package builtins

import (
	"fmt"

	"github.com/tangzhangming/vela/internal/bytecode"
)

// ============================================================================
// 内置种类
// ============================================================================

// Kind 内置桩代码的种类
type Kind uint8

const (
	KindNative          Kind = iota // 原生入口，携带函数地址
	KindJSStub                      // 脚本调用约定的优化桩，携带参数个数
	KindStub                        // 桩调用约定的优化桩
	KindStatefulStub                // 带状态的桩调用约定优化桩
	KindHandler                     // 内联缓存处理器
	KindBytecodeHandler             // 字节码分发处理器，携带 (操作码, 档位)
	KindASM                         // 手写汇编入口
)

var kindNames = [...]string{
	KindNative:          "Native",
	KindJSStub:          "JSStub",
	KindStub:            "Stub",
	KindStatefulStub:    "StatefulStub",
	KindHandler:         "Handler",
	KindBytecodeHandler: "BytecodeHandler",
	KindASM:             "ASM",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ============================================================================
// 种类专属数据
// ============================================================================

// bytecodeAndScale 字节码处理器对应的 (操作码, 档位)
type bytecodeAndScale struct {
	bytecode bytecode.OpCode
	scale    bytecode.OperandScale
}

// kindData 按 Kind 取值的带标签联合
// 访问方必须先核对种类，错配是编程错误
type kindData struct {
	// KindNative
	cppEntry uintptr

	// KindJSStub
	parameterCount int16

	// KindBytecodeHandler
	bytecodeAndScale bytecodeAndScale
}

// metadata 一条内置记录，程序启动后不再变化
type metadata struct {
	name string
	kind Kind
	data kindData
}

// 声明辅助，保持表格声明紧凑

func declNative(name string, entry uintptr) metadata {
	return metadata{name: name, kind: KindNative, data: kindData{cppEntry: entry}}
}

func declJSStub(name string, parameterCount int) metadata {
	return metadata{name: name, kind: KindJSStub,
		data: kindData{parameterCount: int16(parameterCount)}}
}

func declStub(name string) metadata {
	return metadata{name: name, kind: KindStub}
}

func declStatefulStub(name string) metadata {
	return metadata{name: name, kind: KindStatefulStub}
}

func declHandler(name string) metadata {
	return metadata{name: name, kind: KindHandler}
}

func declASM(name string) metadata {
	return metadata{name: name, kind: KindASM}
}

func declBytecodeHandler(name string, op bytecode.OpCode, scale bytecode.OperandScale) metadata {
	return metadata{name: name, kind: KindBytecodeHandler,
		data: kindData{bytecodeAndScale: bytecodeAndScale{bytecode: op, scale: scale}}}
}
