package receipts

import (
	"context"
	"sync"

	"github.com/gammazero/deque"
	"github.com/google/uuid"
)

const DefaultMemoryCapacity = 4096

// Memory keeps the last receipts in a ring, the oldest receipt is dropped when the ring is full
type Memory struct {
	capacity int
	data     *deque.Deque[Receipt]
	index    map[uuid.UUID]uint64
	lastSeq  uint64
	mutex    sync.RWMutex
}

func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = DefaultMemoryCapacity
	}
	return &Memory{
		capacity: capacity,
		data:     deque.New[Receipt](capacity, capacity),
		index:    make(map[uuid.UUID]uint64, capacity),
	}
}

func (m *Memory) Append(ctx context.Context, r Receipt) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.index[r.ID]; ok {
		return Receipt{}, ErrDuplicate
	}

	if m.data.Len() >= m.capacity {
		dropped := m.data.PopFront()
		delete(m.index, dropped.ID)
	}

	m.lastSeq++
	r.Seq = m.lastSeq
	m.data.PushBack(r)
	m.index[r.ID] = r.Seq

	return r, nil
}

func (m *Memory) List(ctx context.Context, from uint64, limit int) ([]Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	start, ok := m.position(from)
	if !ok {
		return []Receipt{}, nil
	}

	count := m.data.Len() - start
	if limit > 0 && limit < count {
		count = limit
	}

	res := make([]Receipt, 0, count)
	for i := start; i < start+count; i++ {
		res = append(res, m.data.At(i))
	}
	return res, nil
}

func (m *Memory) Get(ctx context.Context, id uuid.UUID) (Receipt, error) {
	if err := ctx.Err(); err != nil {
		return Receipt{}, err
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	seq, ok := m.index[id]
	if !ok {
		return Receipt{}, ErrNotFound
	}
	pos, _ := m.position(seq)
	return m.data.At(pos), nil
}

func (m *Memory) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return m.data.Len()
}

func (m *Memory) Close() error {
	return nil
}

// position returns the ring index of the first receipt with Seq >= seq, must be called under lock.
// Sequence numbers in the ring are contiguous
func (m *Memory) position(seq uint64) (int, bool) {
	if m.data.Len() == 0 || seq > m.lastSeq {
		return 0, false
	}
	first := m.data.Front().Seq
	if seq <= first {
		return 0, true
	}
	return int(seq - first), true
}
