package checkout

type Status string

const (
	StatusEditing    Status = "EDITING"
	StatusValidating Status = "VALIDATING"
	StatusSubmitting Status = "SUBMITTING"
	StatusCompleted  Status = "COMPLETED"
)

// legalTransitions encodes the form lifecycle: a submit attempt moves
// Editing into Validating; validation either falls back to Editing or
// proceeds to Submitting; submission either completes or falls back to
// Editing with the gateway error surfaced.
var legalTransitions = map[Status][]Status{
	StatusEditing:    {StatusValidating},
	StatusValidating: {StatusEditing, StatusSubmitting},
	StatusSubmitting: {StatusCompleted, StatusEditing},
	StatusCompleted:  {StatusEditing},
}

func CanTransitionTo(from, to Status) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// String representation (for logging)
func (s Status) String() string {
	return string(s)
}
