// Package errors provides custom errors for service types.
package errors

type (
	// InvalidInputError reports missing or malformed request fields.
	InvalidInputError struct {
		Msg string
	}
	// InvalidTransitionError reports a lifecycle transition the status
	// machine does not allow.
	InvalidTransitionError struct {
		Msg string
	}
	// NilDependencyError reports a nil collaborator passed to a service
	// initializer.
	NilDependencyError struct {
		Msg string
	}
)

func (e *InvalidInputError) Error() string {
	return e.Msg
}

func (e *InvalidTransitionError) Error() string {
	return e.Msg
}

func (e *NilDependencyError) Error() string {
	return e.Msg
}
