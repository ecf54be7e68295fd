package cli

import "fmt"

type invalidConfigError struct {
	path string
	err  error
}

func (e invalidConfigError) Error() string {
	if e.path == "" {
		return fmt.Sprintf("invalid config: %v", e.err)
	}
	return fmt.Sprintf("invalid config %s: %v", e.path, e.err)
}

func (e invalidConfigError) Unwrap() error { return e.err }

type trialAbortedError struct{}

func (trialAbortedError) Error() string { return "trial aborted before it finished; nothing recorded" }
