package container

import (
	"sort"
	"sync"
)

type prioritized struct {
	name     string
	priority int
	order    int
}

// PriorityList keeps names ordered by priority. Higher priority comes first;
// ties keep insertion order.
type PriorityList struct {
	mu    sync.RWMutex
	items []prioritized
}

// NewPriorityList creates an empty list.
func NewPriorityList() *PriorityList {
	return &PriorityList{}
}

// Insert adds name with the given priority. Inserting an existing name again
// updates its priority and keeps its original position among equals.
func (l *PriorityList) Insert(name string, priority int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.items {
		if l.items[i].name == name {
			l.items[i].priority = priority
			return
		}
	}
	l.items = append(l.items, prioritized{name: name, priority: priority, order: len(l.items)})
}

// Len returns the number of names.
func (l *PriorityList) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Names returns the names in polling order.
func (l *PriorityList) Names() []string {
	l.mu.RLock()
	items := append([]prioritized(nil), l.items...)
	l.mu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].priority == items[j].priority {
			return items[i].order < items[j].order
		}
		return items[i].priority > items[j].priority
	})

	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.name
	}
	return names
}
