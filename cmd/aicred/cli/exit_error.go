package cli

import "fmt"

// ExitError carries a non-zero exit code out of a RunE handler without
// calling os.Exit. A nil Err means the code speaks for itself, as when a
// wrapped command fails.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}
