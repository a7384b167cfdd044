package support

import "sync"

// InquiryView is the UI-side copy of an inquiry: an entry of the inquiry list,
// the open inquiry, or a child nested under one of those.
type InquiryView struct {
	ID       int64
	Children []*InquiryView

	agg Aggregate
}

func NewInquiryView(id int64, agg Aggregate) *InquiryView {
	return &InquiryView{ID: id, agg: agg}
}

func (v *InquiryView) InquiryID() int64 {
	return v.ID
}

func (v *InquiryView) Aggregate() Aggregate {
	return v.agg
}

func (v *InquiryView) SetAggregate(a Aggregate) {
	v.agg = a
}

// ViewStore owns the list, the open inquiry and their nested children. Views are
// plain memory guarded by one RWMutex: writers (the coordinator) take Lock and
// readers take RLock, so a reader never sees a half-applied set of views.
//
// The Find* methods do not lock; callers hold the lock.
type ViewStore struct {
	mu   sync.RWMutex
	list []*InquiryView
	open *InquiryView
}

func NewViewStore() *ViewStore {
	return &ViewStore{}
}

func (s *ViewStore) Lock()    { s.mu.Lock() }
func (s *ViewStore) Unlock()  { s.mu.Unlock() }
func (s *ViewStore) RLock()   { s.mu.RLock() }
func (s *ViewStore) RUnlock() { s.mu.RUnlock() }

func (s *ViewStore) SetList(list []*InquiryView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = list
}

// SetOpen replaces the open inquiry; nil closes it.
func (s *ViewStore) SetOpen(v *InquiryView) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = v
}

// Aggregates returns a copy of every view's aggregate for the inquiry, canonical
// view first.
func (s *ViewStore) Aggregates(inquiryID int64) []Aggregate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	views := NewLocator(s).Find(inquiryID)
	res := make([]Aggregate, 0, len(views))
	for _, v := range views {
		res = append(res, v.Aggregate())
	}
	return res
}

func (s *ViewStore) FindInOpen(inquiryID int64) AggregateView {
	if s.open != nil && s.open.ID == inquiryID {
		return s.open
	}
	return nil
}

func (s *ViewStore) FindInList(inquiryID int64) AggregateView {
	for _, v := range s.list {
		if v.ID == inquiryID {
			return v
		}
	}
	return nil
}

// FindInParentChildren looks through the open inquiry's children first, then
// the children of list entries.
func (s *ViewStore) FindInParentChildren(inquiryID int64) AggregateView {
	if s.open != nil {
		if v := findChild(s.open.Children, inquiryID); v != nil {
			return v
		}
	}
	for _, parent := range s.list {
		if v := findChild(parent.Children, inquiryID); v != nil {
			return v
		}
	}
	return nil
}

func findChild(children []*InquiryView, inquiryID int64) AggregateView {
	for _, c := range children {
		if c.ID == inquiryID {
			return c
		}
	}
	return nil
}
