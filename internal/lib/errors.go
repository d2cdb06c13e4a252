package lib

import "fmt"

type wrappedError struct {
	parent error
	child  error
}

// WrapError joins parent and child so that errors.Is matches both of them
func WrapError(parent error, child error) error {
	return &wrappedError{parent: parent, child: child}
}

func (e *wrappedError) Error() string {
	return fmt.Sprintf("%s: %s", e.parent.Error(), e.child.Error())
}

func (e *wrappedError) Unwrap() []error {
	return []error{e.parent, e.child}
}
