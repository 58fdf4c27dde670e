package container

import "container/heap"

// item 优先队列中单个元素
// 功能：表示优先队列中的一个元素，包含值、优先级与入队序号
// 说明：优先级相同时按入队序号先进先出，保证虚拟时钟中同一时刻的回调按注册顺序执行
type item[T any] struct {
	Value    T      // 元素的值（任意类型）
	Priority int64  // 元素在队列中的优先级（越小越优先）
	order    uint64 // 入队序号
	index    int    // 项在堆中的索引
}

// priorityQueue 实现了 heap.Interface 并保存了元素
type priorityQueue[T any] []*item[T]

func (pq priorityQueue[T]) Len() int { return len(pq) }

// Less 先比较优先级，再比较入队序号
func (pq priorityQueue[T]) Less(i, j int) bool {
	if pq[i].Priority != pq[j].Priority {
		return pq[i].Priority < pq[j].Priority
	}
	return pq[i].order < pq[j].order
}

func (pq priorityQueue[T]) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue[T]) Push(x any) {
	n := len(*pq)
	item := x.(*item[T])
	item.index = n
	*pq = append(*pq, item)
}

func (pq *priorityQueue[T]) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil  // 避免内存泄漏
	item.index = -1 // 为了安全起见
	*pq = old[0 : n-1]
	return item
}

// PriorityQueue 稳定优先队列（最小堆）
// 功能：提供优先队列的公共接口，封装内部堆实现
// 说明：非线程安全，调用方负责加锁
type PriorityQueue[T any] struct {
	queue priorityQueue[T] // 内部优先队列实现
	seq   uint64           // 下一个入队序号
}

// NewPriorityQueue 创建优先队列
func NewPriorityQueue[T any]() *PriorityQueue[T] {
	return &PriorityQueue[T]{queue: make(priorityQueue[T], 0)}
}

// Len 获取当前队列长度
func (q *PriorityQueue[T]) Len() int {
	return len(q.queue)
}

// First 获取第一个元素及其优先级（不移除）
// 说明：队列为空时调用会panic，调用方需先检查Len
func (q *PriorityQueue[T]) First() (T, int64) {
	return q.queue[0].Value, q.queue[0].Priority
}

// HeapPush 加入元素（堆操作）
// 功能：向优先队列中添加新元素，并维护堆结构
// 参数：value-要添加的元素值，priority-元素优先级
func (q *PriorityQueue[T]) HeapPush(value T, priority int64) {
	heap.Push(&q.queue, &item[T]{
		Value:    value,
		Priority: priority,
		order:    q.seq,
	})
	q.seq++
}

// HeapPop 弹出元素（堆操作）
// 功能：从优先队列中移除并返回优先级最高的元素
// 返回：value-元素值，priority-元素优先级
func (q *PriorityQueue[T]) HeapPop() (value T, priority int64) {
	item := heap.Pop(&q.queue).(*item[T])
	return item.Value, item.Priority
}
