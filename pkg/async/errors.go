package async

import "errors"

// ErrNilFunc is returned by futures created from a nil function.
var ErrNilFunc = errors.New("async: nil function")
