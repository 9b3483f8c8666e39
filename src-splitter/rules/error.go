package rules

import (
	"fmt"
	"strings"
)

// SchemaError is fatal for a single rule document: the document is skipped
// and the run continues with the remaining courses.
type SchemaError struct {
	msg  string
	args map[string]any
}

func NewSchemaError(msg string, args map[string]any) *SchemaError {
	if args == nil {
		args = make(map[string]any)
	}
	return &SchemaError{
		msg:  msg,
		args: args,
	}
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.msg)
	if len(e.args) > 0 {
		sb.WriteString(" |")
		for key, value := range e.args {
			sb.WriteString(fmt.Sprintf(" %s: %v", key, value))
		}
	}
	return sb.String()
}
