package application

// transitions enumerates the pipeline moves the client offers. The backend stays the authority;
// REJECTED and HIRED have no outgoing moves here only because the UI does not offer any.
var transitions = map[Status][]Status{
	StatusPending:     {StatusReviewed, StatusShortlisted, StatusRejected, StatusHired},
	StatusReviewed:    {StatusShortlisted, StatusRejected, StatusHired},
	StatusShortlisted: {StatusRejected, StatusHired},
	StatusRejected:    nil,
	StatusHired:       nil,
}

// Transitions returns the statuses offered from s. The result never contains s.
func Transitions(s Status) []Status {
	next := transitions[s]
	out := make([]Status, 0, len(next))
	for _, t := range next {
		if t == s {
			continue
		}
		out = append(out, t)
	}
	return out
}

func CanTransition(from, to Status) bool {
	if from == to {
		return false
	}
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

func (s Status) Terminal() bool {
	return s.Valid() && len(transitions[s]) == 0
}

// AcceptsInterviewDate reports whether a detailed update into s may carry an interview date.
func (s Status) AcceptsInterviewDate() bool {
	return s == StatusShortlisted || s == StatusHired
}
