package lib

import "sync"

// BoundSet remembers the last `capacity` keys, the oldest key is forgotten first
type BoundSet struct {
	capacity int
	data     []string
	dataMap  map[string]struct{}
	mutex    sync.Mutex
}

func NewBoundSet(capacity int) *BoundSet {
	return &BoundSet{
		capacity: capacity,
		data:     make([]string, 0, capacity),
		dataMap:  make(map[string]struct{}, capacity),
	}
}

// Add returns false if the key is already remembered
func (bs *BoundSet) Add(key string) bool {
	bs.mutex.Lock()
	defer bs.mutex.Unlock()

	if _, ok := bs.dataMap[key]; ok {
		return false
	}

	if len(bs.data) == bs.capacity {
		delete(bs.dataMap, bs.data[0])
		bs.data = bs.data[1:]
	}
	bs.data = append(bs.data, key)
	bs.dataMap[key] = struct{}{}
	return true
}

func (bs *BoundSet) Contains(key string) bool {
	bs.mutex.Lock()
	defer bs.mutex.Unlock()

	_, ok := bs.dataMap[key]
	return ok
}

func (bs *BoundSet) Count() int {
	bs.mutex.Lock()
	defer bs.mutex.Unlock()

	return len(bs.data)
}
