package memory

import (
	"sync"

	"github.com/gatewarden/gatewarden-go/pkg/cmap"
)

// tokenSet is a concurrent-safe set of token values.
type tokenSet struct {
	mu    sync.RWMutex
	items map[string]struct{}
}

func newTokenSet() *tokenSet {
	return &tokenSet{items: make(map[string]struct{})}
}

func (s *tokenSet) Add(tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[tok] = struct{}{}
}

func (s *tokenSet) Remove(tok string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, tok)
}

func (s *tokenSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

func (s *tokenSet) Items() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]string, 0, len(s.items))
	for tok := range s.items {
		items = append(items, tok)
	}
	return items
}

// userIndex maps owners to the set of tokens they hold, enabling list
// operations without scanning the primary index.
type userIndex struct {
	index *cmap.Map[string, *tokenSet]
}

func newUserIndex() *userIndex {
	return &userIndex{index: cmap.New[string, *tokenSet]()}
}

func (i *userIndex) Add(user, tok string) {
	set, _ := i.index.GetOrSet(user, newTokenSet())
	set.Add(tok)
}

func (i *userIndex) Remove(user, tok string) {
	set, ok := i.index.Get(user)
	if !ok {
		return
	}
	set.Remove(tok)
	if set.Len() == 0 {
		i.index.Delete(user)
	}
}

func (i *userIndex) Get(user string) []string {
	set, ok := i.index.Get(user)
	if !ok {
		return nil
	}
	return set.Items()
}

func (i *userIndex) Count(user string) int {
	set, ok := i.index.Get(user)
	if !ok {
		return 0
	}
	return set.Len()
}
