package planner

import "container/heap"

// queueItem represents a node slot in the priority queue
type queueItem struct {
	node     int
	priority float64
	index    int // Index in the heap
}

// priorityQueue implements heap.Interface ordered by ascending priority
type priorityQueue []*queueItem

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].priority < pq[j].priority
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	n := len(*pq)
	item := x.(*queueItem)
	item.index = n
	*pq = append(*pq, item)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	item.index = -1
	*pq = old[0 : n-1]

	return item
}

func (pq *priorityQueue) push(node int, priority float64) {
	heap.Push(pq, &queueItem{node: node, priority: priority})
}

func (pq *priorityQueue) pop() *queueItem {
	return heap.Pop(pq).(*queueItem)
}
