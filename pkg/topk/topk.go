// Package topk 提供一个容量受限的 Top-K 选择器：
// 以最小堆维护"当前最大的 k 个"，扫描 N 个候选的代价为 O(N log k)。
package topk

// Entry 是选择器中的一个元素：(分数, ID) 对，堆内只按分数比较。
// 分数相同的元素之间不保证任何顺序（堆比较不看 ID）。
type Entry struct {
	ID    string
	Score float64
}

// Selector 是容量为 k 的最小堆。堆顶是当前保留集合中最小的分数，
// 新元素只有超过堆顶才会替换它，因此堆中始终是已见元素里最大的 ≤k 个。
type Selector struct {
	k    int
	heap []Entry
}

// New 创建一个容量为 k 的选择器；k <= 0 视为 1。
func New(k int) *Selector {
	if k <= 0 {
		k = 1
	}
	return &Selector{
		k:    k,
		heap: make([]Entry, 0, k),
	}
}

// Len 返回当前堆中元素个数。
func (s *Selector) Len() int {
	return len(s.heap)
}

// Push 按有界策略插入：
//   - 未满 k 个时无条件插入
//   - 已满时与堆顶（当前最小）比较，新分数更大则淘汰堆顶后插入，否则丢弃
func (s *Selector) Push(id string, score float64) {
	if len(s.heap) < s.k {
		s.heap = append(s.heap, Entry{ID: id, Score: score})
		s.siftUp(len(s.heap) - 1)
		return
	}
	if score > s.heap[0].Score {
		s.heap[0] = Entry{ID: id, Score: score}
		s.siftDown(0)
	}
}

// Peek 返回当前最小元素但不移除；空堆返回 ok=false。
func (s *Selector) Peek() (Entry, bool) {
	if len(s.heap) == 0 {
		return Entry{}, false
	}
	return s.heap[0], true
}

// Pop 移除并返回当前最小元素；空堆返回 ok=false。
func (s *Selector) Pop() (Entry, bool) {
	if len(s.heap) == 0 {
		return Entry{}, false
	}
	min := s.heap[0]
	last := len(s.heap) - 1
	s.heap[0] = s.heap[last]
	s.heap = s.heap[:last]
	if len(s.heap) > 0 {
		s.siftDown(0)
	}
	return min, true
}

// Descending 清空选择器并按分数降序返回全部元素。
// 反复 Pop 得到升序序列，再原地双指针反转成降序。
func (s *Selector) Descending() []Entry {
	out := make([]Entry, 0, len(s.heap))
	for {
		e, ok := s.Pop()
		if !ok {
			break
		}
		out = append(out, e)
	}

	left, right := 0, len(out)-1
	for left < right {
		tmp := out[left]
		out[left] = out[right]
		out[right] = tmp
		left++
		right--
	}
	return out
}

func (s *Selector) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if s.heap[parent].Score <= s.heap[i].Score {
			break
		}
		s.swap(i, parent)
		i = parent
	}
}

func (s *Selector) siftDown(i int) {
	n := len(s.heap)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && s.heap[left].Score < s.heap[smallest].Score {
			smallest = left
		}
		if right < n && s.heap[right].Score < s.heap[smallest].Score {
			smallest = right
		}
		if smallest == i {
			break
		}
		s.swap(i, smallest)
		i = smallest
	}
}

// swap 用临时变量三步交换，保证两个槽位都被正确写入。
func (s *Selector) swap(i, j int) {
	tmp := s.heap[i]
	s.heap[i] = s.heap[j]
	s.heap[j] = tmp
}
