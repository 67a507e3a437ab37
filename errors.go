package tinyfs

// Error is a TinyFS error carrying the negative status code described in
// spec §7. Callers that only care about the kind should use errors.Is
// against the sentinel vars below; the Code is exposed for callers that
// need the raw integer status used by the public API.
type Error struct {
	Code int
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newErr(code int, msg string) *Error {
	return &Error{Code: code, msg: msg}
}

// Sentinel errors, one per taxonomy row in spec §7. Compare with errors.Is.
var (
	ErrDiskOperation  = newErr(-2, "tinyfs: disk operation failed")
	ErrNoMemory       = newErr(-3, "tinyfs: open file table growth failed")
	ErrFileNotFound   = newErr(-4, "tinyfs: file not found")
	ErrFdNotFound     = newErr(-5, "tinyfs: descriptor not found")
	ErrFileSizeLimit  = newErr(-6, "tinyfs: file or filesystem out of space")
	ErrInvalidFsSize  = newErr(-7, "tinyfs: invalid filesystem size")
	ErrEOF            = newErr(-8, "tinyfs: end of file")
	ErrFsIntegrity    = newErr(-9, "tinyfs: filesystem integrity check failed")
	ErrFilename       = newErr(-10, "tinyfs: invalid filename or path")
	ErrInvalidBlock   = newErr(-11, "tinyfs: invalid block operation")
	ErrDirExists      = newErr(-12, "tinyfs: directory already exists")
	ErrDirNonEmpty    = newErr(-13, "tinyfs: directory not empty")
)

// Is makes errors.Is(err, ErrX) work for values returned by newErr, including
// when wrapped with fmt.Errorf("...: %w", err).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}
