package support

// ViewSource exposes the containers that may hold a view of an inquiry. Each
// finder returns nil when its container does not render the inquiry.
type ViewSource interface {
	FindInOpen(inquiryID int64) AggregateView
	FindInList(inquiryID int64) AggregateView
	FindInParentChildren(inquiryID int64) AggregateView
}

type Locator struct {
	source ViewSource
}

func NewLocator(source ViewSource) *Locator {
	return &Locator{source: source}
}

// Find returns the distinct views of the inquiry ordered open, list, nested, so
// the first element is the canonical view. The result is empty when nothing
// renders the inquiry.
func (l *Locator) Find(inquiryID int64) []AggregateView {
	candidates := [...]AggregateView{
		l.source.FindInOpen(inquiryID),
		l.source.FindInList(inquiryID),
		l.source.FindInParentChildren(inquiryID),
	}

	views := make([]AggregateView, 0, len(candidates))
	for _, v := range candidates {
		if v == nil || v.InquiryID() != inquiryID || containsView(views, v) {
			continue
		}
		views = append(views, v)
	}
	return views
}

func containsView(views []AggregateView, v AggregateView) bool {
	for _, existing := range views {
		if existing == v {
			return true
		}
	}
	return false
}
