package tiering

import (
	"fmt"

	"github.com/tangzhangming/vela/internal/objects"
)

// ============================================================================
// 优化决策
// ============================================================================

// OptimizationReason 触发优化的原因
type OptimizationReason uint8

const (
	ReasonDoNotOptimize OptimizationReason = iota
	ReasonHotAndStable
	ReasonSmallFunction
)

var reasonTexts = [...]string{
	ReasonDoNotOptimize: "do not optimize",
	ReasonHotAndStable:  "hot and stable",
	ReasonSmallFunction: "small function",
}

func (r OptimizationReason) String() string {
	if int(r) < len(reasonTexts) {
		return reasonTexts[r]
	}
	return fmt.Sprintf("OptimizationReason(%d)", uint8(r))
}

// OptimizationDecision 一次升层判定的结果：原因、目标层级、并发模式
type OptimizationDecision struct {
	Reason OptimizationReason
	Kind   objects.CodeKind
	Mode   objects.ConcurrencyMode
}

// ShouldOptimize 是否要发起优化
func (d OptimizationDecision) ShouldOptimize() bool {
	return d.Reason != ReasonDoNotOptimize
}

func decisionMidTier() OptimizationDecision {
	return OptimizationDecision{
		Reason: ReasonHotAndStable,
		Kind:   objects.CodeKindMidTier,
		Mode:   objects.ConcurrencyModeNotConcurrent,
	}
}

func decisionTopTierHotAndStable() OptimizationDecision {
	return OptimizationDecision{
		Reason: ReasonHotAndStable,
		Kind:   objects.CodeKindTopTier,
		Mode:   objects.ConcurrencyModeConcurrent,
	}
}

func decisionTopTierSmallFunction() OptimizationDecision {
	return OptimizationDecision{
		Reason: ReasonSmallFunction,
		Kind:   objects.CodeKindTopTier,
		Mode:   objects.ConcurrencyModeConcurrent,
	}
}

func decisionDoNotOptimize() OptimizationDecision {
	// 层级和模式在这里没有意义，只是占位
	return OptimizationDecision{
		Reason: ReasonDoNotOptimize,
		Kind:   objects.CodeKindTopTier,
		Mode:   objects.ConcurrencyModeConcurrent,
	}
}
