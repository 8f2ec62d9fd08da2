package tiering

import (
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/tangzhangming/vela/internal/objects"
)

// ============================================================================
// 基线批量编译器
// ============================================================================

// 一批函数的估算指令总量达到阈值后整批下发
const defaultBatchWeightThreshold = 4096

// BaselineBatchCompiler 把基线编译请求攒成批次交给后台工作者
// 入队永不阻塞控制器；编译失败只记日志，不回传
type BaselineBatchCompiler struct {
	log      *zap.Logger
	compiler Compiler

	queue chan *objects.Function

	weightThreshold int

	stopOnce sync.Once
	done     chan struct{}
	finished chan struct{}

	mu    sync.Mutex
	stats BatchStats
}

// BatchStats 批量编译统计
type BatchStats struct {
	Enqueued       int64 `json:"enqueued"`
	Dropped        int64 `json:"dropped"`
	BatchesFlushed int64 `json:"batches_flushed"`
	Compiled       int64 `json:"compiled"`
	Failed         int64 `json:"failed"`
}

// NewBaselineBatchCompiler 创建批量编译器并启动后台工作者
func NewBaselineBatchCompiler(compiler Compiler, log *zap.Logger) *BaselineBatchCompiler {
	if compiler == nil {
		panic("tiering: nil compiler for batch compiler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	b := &BaselineBatchCompiler{
		log:             log,
		compiler:        compiler,
		queue:           make(chan *objects.Function, 1024),
		weightThreshold: defaultBatchWeightThreshold,
		done:            make(chan struct{}),
		finished:        make(chan struct{}),
	}
	go b.worker()
	return b
}

// EnqueueFunction 把函数排进当前批次
// 队列已满时放弃本次请求，函数会在下一个 tick 再次到来
func (b *BaselineBatchCompiler) EnqueueFunction(function *objects.Function) {
	select {
	case b.queue <- function:
		b.mu.Lock()
		b.stats.Enqueued++
		b.mu.Unlock()
	default:
		b.mu.Lock()
		b.stats.Dropped++
		b.mu.Unlock()
		b.log.Debug("baseline batch queue full, dropping request",
			zap.String("function", function.Shared().Name()))
	}
}

// Stop 停止后台工作者并等待收尾
func (b *BaselineBatchCompiler) Stop() {
	b.stopOnce.Do(func() {
		close(b.done)
		<-b.finished
	})
}

// Stats 统计快照
func (b *BaselineBatchCompiler) Stats() BatchStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

func (b *BaselineBatchCompiler) worker() {
	defer close(b.finished)

	var batch []*objects.Function
	weight := 0

	flush := func() {
		if len(batch) == 0 {
			return
		}
		b.compileBatch(batch)
		batch = batch[:0]
		weight = 0
	}

	for {
		select {
		case fn := <-b.queue:
			batch = append(batch, fn)
			weight += fn.Shared().Bytecode().Length()
			if weight >= b.weightThreshold {
				flush()
			}
		case <-b.done:
			// 排空队列后收尾
			for {
				select {
				case fn := <-b.queue:
					batch = append(batch, fn)
				default:
					flush()
					return
				}
			}
		default:
			// 队列空了就把攒下的批次发出去
			flush()
			select {
			case fn := <-b.queue:
				batch = append(batch, fn)
				weight += fn.Shared().Bytecode().Length()
			case <-b.done:
				// 回到外层循环，由 done 分支排空队列后收尾
			}
		}
	}
}

func (b *BaselineBatchCompiler) compileBatch(batch []*objects.Function) {
	var combined error
	compiled := 0
	for _, fn := range batch {
		if fn.ActiveTierIsBaseline() {
			continue
		}
		if err := b.compiler.CompileBaseline(fn, ClearException); err != nil {
			combined = multierr.Append(combined, err)
			continue
		}
		compiled++
	}

	b.mu.Lock()
	b.stats.BatchesFlushed++
	b.stats.Compiled += int64(compiled)
	b.stats.Failed += int64(len(multierr.Errors(combined)))
	b.mu.Unlock()

	if combined != nil {
		b.log.Warn("baseline batch finished with failures",
			zap.Int("batch_size", len(batch)),
			zap.Error(combined))
	} else {
		b.log.Debug("baseline batch compiled",
			zap.Int("batch_size", len(batch)),
			zap.Int("compiled", compiled))
	}
}
