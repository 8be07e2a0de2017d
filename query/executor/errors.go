package executor

import "fmt"

// ExecError is a statement the database rejected or failed to run
type ExecError struct {
	SQL  string
	Args []any
	Err  error
}

func (e *ExecError) Error() string {
	if len(e.Args) == 0 {
		return fmt.Sprintf("execution failed: %v\n%s", e.Err, e.SQL)
	}
	return fmt.Sprintf("execution failed: %v\n%s\nargs: %v", e.Err, e.SQL, e.Args)
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
