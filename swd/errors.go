package swd

import "fmt"

// InvalidArgumentError reports a builder argument outside its valid range.
type InvalidArgumentError struct {
	Arg   string
	Value uint32
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("swd: invalid %s: %#x", e.Arg, e.Value)
}
