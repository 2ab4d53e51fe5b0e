package pipeline

// Status is the terminal per-category outcome of one refresh run.
type Status string

// Status values. These are also persisted as checkpoint statuses.
const (
	StatusUpdated     Status = "updated"
	StatusFailed      Status = "failed"
	StatusParseFailed Status = "parse_failed"
)

// CategoryResult records the outcome for one industry.
type CategoryResult struct {
	Industry string `json:"industry"`
	Status   Status `json:"status"`
	Error    string `json:"error,omitempty"`
}

// RunOutcome accumulates per-category results over one run. It is built by
// a single writer, appended to exactly once per processed category, and
// never mutated after the run completes.
type RunOutcome struct {
	Processed int              `json:"processed"`
	Results   []CategoryResult `json:"results"`
}

func (o *RunOutcome) record(industry string, status Status, err error) {
	r := CategoryResult{Industry: industry, Status: status}
	if err != nil {
		r.Error = err.Error()
	}
	o.Results = append(o.Results, r)
	o.Processed = len(o.Results)
}

// Count returns how many categories finished with the given status.
func (o *RunOutcome) Count(status Status) int {
	n := 0
	for _, r := range o.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}
