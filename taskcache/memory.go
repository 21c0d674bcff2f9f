package taskcache

import "sync"

// MemoryCache is the in-process normalized task cache. Merges are
// field-level: present patch fields overwrite, absent fields preserve
// the cached value. Reads return copies; cached records are never
// mutated in place.
type MemoryCache struct {
	mu    sync.RWMutex
	tasks map[int64]Task
}

// NewMemoryCache creates an empty task cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		tasks: make(map[int64]Task),
	}
}

// ReceiveTasks merges partial task records into the cache. Unknown ids
// create new records.
func (c *MemoryCache) ReceiveTasks(patches ...Patch) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, patch := range patches {
		if patch.ID == 0 {
			continue
		}
		task := c.tasks[patch.ID]
		task.ID = patch.ID
		if patch.Name != nil {
			task.Name = *patch.Name
		}
		if patch.Parent != nil {
			task.Parent = *patch.Parent
		}
		if patch.Status != nil {
			task.Status = *patch.Status
		}
		if patch.ReviewClaimedBy.Set {
			if patch.ReviewClaimedBy.ID == nil {
				task.ReviewClaimedBy = nil
			} else {
				claimed := *patch.ReviewClaimedBy.ID
				task.ReviewClaimedBy = &claimed
			}
		}
		c.tasks[patch.ID] = task
	}
}

// Get returns a copy of the cached task.
func (c *MemoryCache) Get(id int64) (Task, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	task, ok := c.tasks[id]
	if !ok {
		return Task{}, ErrTaskNotFound
	}
	if task.ReviewClaimedBy != nil {
		claimed := *task.ReviewClaimedBy
		task.ReviewClaimedBy = &claimed
	}
	return task, nil
}

// Len returns the number of cached tasks.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.tasks)
}
