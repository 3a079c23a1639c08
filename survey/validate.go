package survey

import (
	"fmt"
	"sort"

	"github.com/hashicorp/go-multierror"
	"github.com/mbolis/survey-desk/model"
	"github.com/pkg/errors"
)

// Result is the outcome of validating one submission. It is all-or-nothing:
// Accepted is true iff Errors is empty.
type Result struct {
	Accepted bool     `json:"accepted"`
	Errors   []string `json:"errors,omitempty"`

	// Warnings never affect acceptance.
	Warnings []string `json:"warnings,omitempty"`
}

// Err folds the collected messages into a single error, nil when accepted.
func (r Result) Err() error {
	var merr *multierror.Error
	for _, msg := range r.Errors {
		merr = multierror.Append(merr, errors.New(msg))
	}
	return merr.ErrorOrNil()
}

// Validate checks a submission against the survey schema. Errors are listed
// in schema order, followed by one error per submitted key that is not a
// question id (sorted by key).
func Validate(schema []model.Question, submission map[string]any) Result {
	var res Result

	known := make(map[string]struct{}, len(schema))
	for _, q := range schema {
		known[q.ID] = struct{}{}

		v := submission[q.ID]
		if unanswered(v) {
			if q.Required {
				res.Errors = append(res.Errors, fmt.Sprintf("required question %q is unanswered", q.Label))
			}
			continue
		}

		kind := KindOf(q)
		if msg := kind.check(q.Label, v); msg != "" {
			res.Errors = append(res.Errors, msg)
			continue
		}

		// an empty selection satisfies "required" for checkboxes
		if _, ok := kind.(Checkbox); ok && q.Required {
			if list, _ := asList(v); len(list) == 0 {
				res.Warnings = append(res.Warnings, fmt.Sprintf("required question %q answered with no selection", q.Label))
			}
		}
	}

	var extra []string
	for key := range submission {
		if _, ok := known[key]; !ok {
			extra = append(extra, key)
		}
	}
	sort.Strings(extra)
	for _, key := range extra {
		res.Errors = append(res.Errors, fmt.Sprintf("field %q is not part of the survey", key))
	}

	res.Accepted = len(res.Errors) == 0
	return res
}

// absent, null and "" all mean "not answered"
func unanswered(v any) bool {
	return v == nil || v == ""
}
