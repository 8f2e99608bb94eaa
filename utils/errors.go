package utils

import "errors"

// RunAndWrapOnError runs fn and joins its error, if any, with err. Used to close resources
// on an error path without losing either failure.
func RunAndWrapOnError(fn func() error, err error) error {
	if fnErr := fn(); fnErr != nil {
		return errors.Join(err, fnErr)
	}
	return err
}
