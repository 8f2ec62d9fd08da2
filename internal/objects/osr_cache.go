package objects

import (
	"sort"

	"github.com/tangzhangming/vela/internal/bytecode"
)

// ============================================================================
// OSR 优化代码缓存
// ============================================================================

// OSRCodeCache 每个原生上下文一份的 OSR 入口备忘
// 记录各共享函数信息上曾经成功 OSR 过的回边偏移
type OSRCodeCache struct {
	// sfi -> 升序的 JumpLoop 偏移
	offsets map[*SharedFunctionInfo][]int
}

// NewOSRCodeCache 创建缓存
func NewOSRCodeCache() *OSRCodeCache {
	return &OSRCodeCache{offsets: make(map[*SharedFunctionInfo][]int)}
}

// Insert 记录一个回边偏移
// 偏移处的指令必须是 JumpLoop —— 之后消费方会在该偏移处直接读循环深度操作数，
// 这里是唯一把关的入口
func (c *OSRCodeCache) Insert(sfi *SharedFunctionInfo, jumpOffset int) {
	it := bytecode.NewIterator(sfi.Bytecode())
	it.SetOffset(jumpOffset)
	if it.Current() != bytecode.OpJumpLoop {
		panic("objects: OSR cache offset is not a JumpLoop")
	}

	offsets := c.offsets[sfi]
	for _, o := range offsets {
		if o == jumpOffset {
			return
		}
	}
	offsets = append(offsets, jumpOffset)
	sort.Ints(offsets)
	c.offsets[sfi] = offsets
	sfi.setOSRCodeCacheState(OSRCachedWithEntries)
}

// GetBytecodeOffsetsFromSFI 返回该共享函数信息的全部回边偏移（升序）
func (c *OSRCodeCache) GetBytecodeOffsetsFromSFI(sfi *SharedFunctionInfo) []int {
	return c.offsets[sfi]
}

// Evict 清除该共享函数信息的条目
func (c *OSRCodeCache) Evict(sfi *SharedFunctionInfo) {
	delete(c.offsets, sfi)
	sfi.setOSRCodeCacheState(OSRNotCached)
}
