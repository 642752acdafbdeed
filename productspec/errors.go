package productspec

import "fmt"

// UnknownCollectionGroupError reports a keyword that does not name a
// collection group in the specification.
type UnknownCollectionGroupError struct {
	Keyword string
}

func (e *UnknownCollectionGroupError) Error() string {
	return fmt.Sprintf("productspec: unknown collection group %q", e.Keyword)
}

// UnknownSensorSetError reports a reference that resolved to no sensor set,
// neither as a canonical keyword nor as a collection group alias.
type UnknownSensorSetError struct {
	Keyword string
}

func (e *UnknownSensorSetError) Error() string {
	return fmt.Sprintf("productspec: could not determine sensor set from %q", e.Keyword)
}
