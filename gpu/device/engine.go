package device

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/kiln/descriptor"
	"github.com/vkngwrapper/kiln/fatal"
	"github.com/vkngwrapper/kiln/gpu"
	"github.com/vkngwrapper/kiln/gpu/command"
	"github.com/vkngwrapper/kiln/gpu/native"
	"github.com/vkngwrapper/kiln/memutils"
	"golang.org/x/exp/slog"
)

type queue struct {
	queueType gpu.QueueType
	native    native.Queue
	fence     Fence
	lists     []*commandList
	// batch holds closed lists waiting for the next flush
	batch []native.CommandList
}

// Engine turns command buffers into native command lists and tracks the fence timeline of the
// direct, compute and copy queues. Submissions to the compute and copy queues are executed
// immediately; direct submissions are batched until the next flush or present.
type Engine struct {
	logger     *slog.Logger
	backend    native.Device
	res        *resources
	shaderHeap *descriptor.ShaderHeap
	queues     [gpu.QueueTypeCount]queue
	timestamps native.QueryHeap
	swapChain  *swapChain
}

func newEngine(logger *slog.Logger, backend native.Device, res *resources, shaderHeap *descriptor.ShaderHeap) (*Engine, error) {
	e := &Engine{
		logger:     logger,
		backend:    backend,
		res:        res,
		shaderHeap: shaderHeap,
	}

	for i := range e.queues {
		queueType := gpu.QueueType(i)

		q, err := backend.CreateQueue(queueType)
		if err != nil {
			e.destroy()
			return nil, errors.Wrapf(err, "failed to create %s queue", queueType)
		}
		e.queues[i].queueType = queueType
		e.queues[i].native = q

		fence, err := backend.CreateFence(0)
		if err != nil {
			e.destroy()
			return nil, errors.Wrapf(err, "failed to create %s fence", queueType)
		}
		e.queues[i].fence.native = fence
	}

	timestamps, err := backend.CreateTimestampQueryHeap(gpu.MaxTimestampQueries)
	if err != nil {
		e.destroy()
		return nil, errors.Wrap(err, "failed to create timestamp query heap")
	}
	e.timestamps = timestamps

	return e, nil
}

func (e *Engine) getCommandList(queueType gpu.QueueType) *commandList {
	q := &e.queues[queueType]
	for _, list := range q.lists {
		if list.state == listReset {
			list.lock()
			return list
		}
	}

	var shaderHeap *descriptor.ShaderHeap
	if queueType != gpu.QueueCopy {
		shaderHeap = e.shaderHeap
	}

	list, err := newCommandList(e.backend, queueType, &q.fence, e.res, shaderHeap)
	fatal.Must(err, "failed to create command list")
	q.lists = append(q.lists, list)

	e.logger.Debug("created command list", slog.String("queue", queueType.String()), slog.Int("lists", len(q.lists)))
	return list
}

// Submit records buffer into a command list for queueType and returns the fence value that marks
// its completion. Compute and copy submissions are executed before Submit returns.
func (e *Engine) Submit(buffer *command.Buffer, queueType gpu.QueueType) gpu.Signal {
	list := e.getCommandList(queueType)
	list.replay(buffer, e.timestamps, e.swapChain)

	q := &e.queues[queueType]
	q.fence.Head++

	list.close()
	q.batch = append(q.batch, list.list)

	if queueType == gpu.QueueCompute || queueType == gpu.QueueCopy {
		e.FlushQueue(queueType)
	}

	return gpu.Signal{Queue: queueType, Value: q.fence.Head}
}

// FlushQueue executes every batched list on queueType in one call and readies them for reuse
func (e *Engine) FlushQueue(queueType gpu.QueueType) {
	q := &e.queues[queueType]
	if len(q.batch) == 0 {
		return
	}

	fatal.Must(q.native.ExecuteCommandLists(q.batch), "failed to execute command lists")

	for _, list := range q.lists {
		if list.state == listPending {
			list.reset()
		}
	}

	for i := range q.batch {
		q.batch[i] = nil
	}
	q.batch = q.batch[:0]
}

func (e *Engine) Flush() {
	for i := range e.queues {
		e.FlushQueue(gpu.QueueType(i))
	}
}

// SignalQueue asks queueType to signal its head if it has not been signaled yet and returns the
// last signaled value
func (e *Engine) SignalQueue(queueType gpu.QueueType) uint64 {
	q := &e.queues[queueType]
	if q.fence.LastSignal < q.fence.Head {
		fatal.Must(q.native.Signal(q.fence.native, q.fence.Head), "failed to signal fence")
		q.fence.LastSignal = q.fence.Head
	}

	memutils.DebugValidate(&q.fence)
	return q.fence.LastSignal
}

// Wait makes queueType wait on the GPU until signal is reached. The CPU does not block.
func (e *Engine) Wait(signal gpu.Signal, queueType gpu.QueueType) {
	producer := &e.queues[signal.Queue]
	fatal.Check(producer.fence.Head >= signal.Value,
		"wait on %s fence value %d which is past its head %d", signal.Queue, signal.Value, producer.fence.Head)

	e.FlushQueue(signal.Queue)
	e.SignalQueue(signal.Queue)
	e.FlushQueue(queueType)

	target := &e.queues[queueType]
	fatal.Must(target.native.Wait(producer.fence.native, signal.Value), "failed to make queue wait")
}

// Block stalls the CPU until the queue named by signal has finished everything submitted to it
func (e *Engine) Block(signal gpu.Signal) {
	e.FlushQueue(signal.Queue)
	e.SignalQueue(signal.Queue)

	q := &e.queues[signal.Queue]
	fatal.Check(signal.Value <= q.fence.LastSignal,
		"block on %s fence value %d which was never signaled (last %d)", signal.Queue, signal.Value, q.fence.LastSignal)

	fatal.Must(q.fence.native.Wait(q.fence.Head), "failed to wait for fence")
	q.fence.Tail = q.fence.Head

	memutils.DebugValidate(&q.fence)
}

// Present flushes the direct queue, presents the current back buffer and signals the direct
// fence. It is also where every queue's tail catches up with the GPU.
func (e *Engine) Present() gpu.Signal {
	fatal.Check(e.swapChain != nil, "present without a swapchain")

	e.FlushQueue(gpu.QueueDirect)
	fatal.Must(e.swapChain.native.Present(), "failed to present")

	direct := &e.queues[gpu.QueueDirect]
	direct.fence.Head++
	e.SignalQueue(gpu.QueueDirect)

	for i := range e.queues {
		q := &e.queues[i]
		q.fence.Tail = q.fence.native.CompletedValue()
		memutils.DebugValidate(&q.fence)
	}

	return gpu.Signal{Queue: gpu.QueueDirect, Value: direct.fence.Head}
}

// Sync drains every queue
func (e *Engine) Sync() {
	e.Flush()

	for i := range e.queues {
		q := &e.queues[i]
		fatal.Must(q.native.Signal(q.fence.native, q.fence.Head), "failed to signal fence")
		q.fence.LastSignal = q.fence.Head

		fatal.Must(q.fence.native.Wait(q.fence.Head), "failed to wait for fence")
		q.fence.Tail = q.fence.Head
	}
}

func (e *Engine) CompletedValue(queueType gpu.QueueType) uint64 {
	return e.queues[queueType].fence.native.CompletedValue()
}

// Fence returns a snapshot of queueType's fence timeline
func (e *Engine) Fence(queueType gpu.QueueType) Fence {
	return e.queues[queueType].fence
}

func (e *Engine) TimestampFrequency(queueType gpu.QueueType) uint64 {
	return e.queues[queueType].native.TimestampFrequency()
}

// CommandLists is the number of command lists created for queueType
func (e *Engine) CommandLists(queueType gpu.QueueType) int {
	return len(e.queues[queueType].lists)
}

func (e *Engine) destroy() {
	for i := range e.queues {
		q := &e.queues[i]
		for _, list := range q.lists {
			list.release()
		}
		q.lists = nil

		if q.fence.native != nil {
			q.fence.native.Release()
			q.fence.native = nil
		}
		if q.native != nil {
			q.native.Release()
			q.native = nil
		}
	}

	if e.timestamps != nil {
		e.timestamps.Release()
		e.timestamps = nil
	}
}
