package rowdb

import "errors"

// ErrStoreUnavailable matches every failure to read or write the store.
var ErrStoreUnavailable = errors.New("row store unavailable")

// StoreError records which store operation failed. Error keeps the driver's
// message intact because the row service reports it verbatim.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	if e == nil || e.Err == nil {
		return ErrStoreUnavailable.Error()
	}
	return e.Err.Error()
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is reports whether target is ErrStoreUnavailable.
func (e *StoreError) Is(target error) bool {
	return target == ErrStoreUnavailable
}

func storeError(op string, err error) error {
	if err == nil {
		return nil
	}
	var existing *StoreError
	if errors.As(err, &existing) {
		return err
	}
	return &StoreError{Op: op, Err: err}
}
