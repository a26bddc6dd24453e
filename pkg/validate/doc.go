/*
Package validate holds the rules a task or project must satisfy before it
may be shown or persisted.

Validation accumulates every violation rather than stopping at the first,
so a caller can surface the complete list at once:

	result := validate.Task(merged)
	if !result.Valid {
		return &pipeline.ValidationError{Errors: result.Errors}
	}

The rules: workspace and title required, title and description length
caps, known status and priority values, dates in 2006-01-02 form, and
due date not before start date (checked only when both dates parse, so a
malformed date reports once, not twice).

The mutation pipeline validates the merged result of a patch, never the
patch alone; see pkg/pipeline.
*/
package validate
