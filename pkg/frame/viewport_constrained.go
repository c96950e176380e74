package frame

// ViewportConstrainedObjectSet tracks fixed and sticky positioned objects.
// The sticky count is kept separately so HasSticky is constant time.
type ViewportConstrainedObjectSet struct {
	objects     []LayoutObject
	sticky      map[LayoutObject]bool
	stickyCount int
}

func newViewportConstrainedObjectSet() *ViewportConstrainedObjectSet {
	return &ViewportConstrainedObjectSet{sticky: make(map[LayoutObject]bool)}
}

// Add inserts o, or updates whether it is sticky if already present.
func (s *ViewportConstrainedObjectSet) Add(o LayoutObject, sticky bool) {
	if was, ok := s.sticky[o]; ok {
		if was != sticky {
			s.sticky[o] = sticky
			if sticky {
				s.stickyCount++
			} else {
				s.stickyCount--
			}
		}
		return
	}
	s.objects = append(s.objects, o)
	s.sticky[o] = sticky
	if sticky {
		s.stickyCount++
	}
}

// Remove drops o. Removing an absent object is a no-op.
func (s *ViewportConstrainedObjectSet) Remove(o LayoutObject) {
	sticky, ok := s.sticky[o]
	if !ok {
		return
	}
	delete(s.sticky, o)
	if sticky {
		s.stickyCount--
	}
	for i, obj := range s.objects {
		if obj == o {
			s.objects = append(s.objects[:i], s.objects[i+1:]...)
			break
		}
	}
}

func (s *ViewportConstrainedObjectSet) Contains(o LayoutObject) bool {
	_, ok := s.sticky[o]
	return ok
}

func (s *ViewportConstrainedObjectSet) Len() int         { return len(s.objects) }
func (s *ViewportConstrainedObjectSet) IsEmpty() bool    { return len(s.objects) == 0 }
func (s *ViewportConstrainedObjectSet) HasSticky() bool  { return s.stickyCount > 0 }
func (s *ViewportConstrainedObjectSet) StickyCount() int { return s.stickyCount }

// InvalidatePaint tells every member that its painted position is stale.
func (s *ViewportConstrainedObjectSet) InvalidatePaint() int {
	n := 0
	for _, o := range s.objects {
		if pi, ok := o.(PaintInvalidator); ok {
			pi.SetNeedsPaintInvalidation()
			n++
		}
	}
	return n
}
