package util

// Set keeps values in the order they were first added.
type Set[V comparable] struct {
	values map[V]bool
	order  []V
}

func NewSet[V comparable](values ...V) *Set[V] {
	set := &Set[V]{
		values: map[V]bool{},
	}
	for _, value := range values {
		set.Add(value)
	}
	return set
}

// Add returns true if the value was not in the set before.
func (s *Set[V]) Add(value V) bool {
	if s.values[value] {
		return false
	}
	s.values[value] = true
	s.order = append(s.order, value)
	return true
}

func (s *Set[V]) Contains(value V) bool {
	return s.values[value]
}

func (s *Set[V]) Len() int {
	return len(s.order)
}

func (s *Set[V]) Values() []V {
	values := make([]V, len(s.order))
	copy(values, s.order)
	return values
}
