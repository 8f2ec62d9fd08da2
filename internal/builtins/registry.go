package builtins

import (
	"fmt"
	"unsafe"

	"github.com/tangzhangming/vela/internal/objects"
)

// ============================================================================
// 内置代码表
// ============================================================================

// Builtins 一个隔离实例的内置表
// 初始化阶段单线程写入，之后只读
type Builtins struct {
	blob *EmbeddedBlob

	// 内置表：连续定长数组，下标即编号
	// 数组的地址区间同时充当句柄的身份测试
	table     [BuiltinCount]objects.Code
	installed [BuiltinCount]bool

	// 生成代码查询的入口表
	entryTable [BuiltinCount]uintptr

	// tier0 前缀的镜像表
	tier0Table      [Tier0Count]objects.Code
	tier0EntryTable [Tier0Count]uintptr

	initialized bool
}

// New 创建内置表
func New(blob *EmbeddedBlob) *Builtins {
	if blob == nil {
		panic("builtins: nil embedded blob")
	}
	return &Builtins{blob: blob}
}

// EmbeddedBlob 嵌入代码块
func (bt *Builtins) EmbeddedBlob() *EmbeddedBlob { return bt.blob }

// ---------------------------------------------------------------------------
// 安装与读取
// ---------------------------------------------------------------------------

// SetCode 把编译好的代码对象装入内置表
// code 的内置编号必须等于目标槽位；槽位允许尚未初始化；没有并发写入方
func (bt *Builtins) SetCode(b Builtin, code *objects.Code) {
	checkID(b)
	if code.BuiltinID() != int(b) {
		panic(fmt.Sprintf("builtins: code for %s carries builtin id %d",
			Name(b), code.BuiltinID()))
	}
	bt.table[b] = *code
	bt.installed[b] = true
}

// Code 读取内置表中的代码对象
func (bt *Builtins) Code(b Builtin) *objects.Code {
	checkID(b)
	if !bt.installed[b] {
		panic(fmt.Sprintf("builtins: %s has no installed code", Name(b)))
	}
	return &bt.table[b]
}

// CodeHandle 指向内置表槽位的句柄
func (bt *Builtins) CodeHandle(b Builtin) *objects.Code {
	checkID(b)
	return &bt.table[b]
}

// IsBuiltinHandle 句柄是否指向内置表内部的槽位
// 纯地址区间判定，命中时返回槽位编号
func (bt *Builtins) IsBuiltinHandle(handle *objects.Code) (Builtin, bool) {
	if handle == nil {
		return 0, false
	}
	location := uintptr(unsafe.Pointer(handle))
	tableStart := uintptr(unsafe.Pointer(&bt.table[0]))
	slotSize := unsafe.Sizeof(bt.table[0])
	tableEnd := tableStart + slotSize*uintptr(BuiltinCount)
	if location < tableStart || location >= tableEnd {
		return 0, false
	}
	return Builtin((location - tableStart) / slotSize), true
}

// InstallEmbeddedCode 按嵌入代码块的布局为全部槽位生成并安装代码对象
func (bt *Builtins) InstallEmbeddedCode() {
	for b := BuiltinFirst; b <= BuiltinLast; b++ {
		code := objects.NewCode(objects.CodeKindBuiltin, int(b),
			bt.blob.InstructionStartOf(b), bt.blob.InstructionSizeOf(b))
		bt.SetCode(b, code)
	}
	bt.initialized = true
}

// TearDown 退出时标记表不再可检索
func (bt *Builtins) TearDown() { bt.initialized = false }

// ---------------------------------------------------------------------------
// 反向检索
// ---------------------------------------------------------------------------

// Lookup 给定 pc 找到指令区覆盖它的内置
// 先查嵌入代码块的二分表；失败且系统已完成初始化时退回线性扫描
func (bt *Builtins) Lookup(pc uintptr) (Builtin, bool) {
	if b, ok := bt.blob.TryLookupCode(pc); ok {
		return b, true
	}

	// 初始化期间（反汇编器）也可能被调用
	if !bt.initialized {
		return 0, false
	}
	for b := BuiltinFirst; b <= BuiltinLast; b++ {
		if bt.installed[b] && bt.table[b].Contains(pc) {
			return b, true
		}
	}
	return 0, false
}

// ---------------------------------------------------------------------------
// 隔离实例入口表
// ---------------------------------------------------------------------------

// InitializeIsolateTables 填充入口表与 tier0 镜像表
// 入口地址取自嵌入代码块
func (bt *Builtins) InitializeIsolateTables() {
	for b := BuiltinFirst; b <= BuiltinLast; b++ {
		if !bt.installed[b] {
			panic(fmt.Sprintf("builtins: %s not installed before table init", Name(b)))
		}
		if bt.table[b].BuiltinID() != int(b) {
			panic(fmt.Sprintf("builtins: slot %s holds foreign code", Name(b)))
		}
		bt.entryTable[b] = bt.blob.InstructionStartOf(b)
	}

	for b := BuiltinFirst; b <= BuiltinLastTier0; b++ {
		bt.tier0EntryTable[b] = bt.entryTable[b]
		bt.tier0Table[b] = bt.table[b]
	}
}

// EntryOf 生成代码调用内置时使用的入口地址
func (bt *Builtins) EntryOf(b Builtin) uintptr {
	checkID(b)
	return bt.entryTable[b]
}

// Tier0EntryOf tier0 镜像表中的入口地址
func (bt *Builtins) Tier0EntryOf(b Builtin) uintptr {
	if !IsTier0(b) {
		panic(fmt.Sprintf("builtins: %s is not tier0", Name(b)))
	}
	return bt.tier0EntryTable[b]
}

// Tier0Code tier0 镜像表中的代码对象
func (bt *Builtins) Tier0Code(b Builtin) *objects.Code {
	if !IsTier0(b) {
		panic(fmt.Sprintf("builtins: %s is not tier0", Name(b)))
	}
	return &bt.tier0Table[b]
}
