package models

// ClientConfigDescriptor is a small config file a client node needs to reach
// a local mirror.
type ClientConfigDescriptor struct {
	Filename string
	Content  string
}

// ClientConfigSet accumulates descriptors generated during a setup run. It is
// owned by the orchestration context and passed by reference.
type ClientConfigSet struct {
	items []ClientConfigDescriptor
}

// Add appends d unless an equal descriptor is already present. It reports
// whether d was added.
func (s *ClientConfigSet) Add(d ClientConfigDescriptor) bool {
	for _, item := range s.items {
		if item == d {
			return false
		}
	}
	s.items = append(s.items, d)
	return true
}

// Items returns a copy of the collected descriptors in insertion order
func (s *ClientConfigSet) Items() []ClientConfigDescriptor {
	out := make([]ClientConfigDescriptor, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of collected descriptors
func (s *ClientConfigSet) Len() int {
	return len(s.items)
}
