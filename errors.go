package vmdk

import "fmt"

// NotAVmdkError is returned when an input stream has neither a textual
// descriptor nor a valid hosted-sparse header.
type NotAVmdkError struct {
	Path string
}

func (e *NotAVmdkError) Error() string {
	return fmt.Sprintf("%s: not a vmdk (no descriptor, no KDMV header)", e.Path)
}

// InvalidArgumentError is returned when an API is misused: a non-monolithic
// descriptor passed to OpenStream, a filename without a .vmdk suffix, an
// unknown create-type, and similar caller errors.
type InvalidArgumentError struct {
	Reason string
}

func (e *InvalidArgumentError) Error() string {
	return "invalid argument: " + e.Reason
}

// UnsupportedExtentTypeError is returned for a recognized but unimplemented
// extent type.
type UnsupportedExtentTypeError struct {
	Type ExtentType
}

func (e *UnsupportedExtentTypeError) Error() string {
	return fmt.Sprintf("unsupported extent type: %s", e.Type)
}

// UnsupportedCreateTypeError is returned for a recognized but unimplemented
// create-type, or one explicitly excluded from Initialize (StreamOptimized).
type UnsupportedCreateTypeError struct {
	Type CreateType
}

func (e *UnsupportedCreateTypeError) Error() string {
	return fmt.Sprintf("unsupported create type: %s", e.Type)
}

// CorruptError is returned when header fields are self-inconsistent, e.g. a
// descriptor window that runs past the end of the file.
type CorruptError struct {
	Reason string
}

func (e *CorruptError) Error() string {
	return "corrupt vmdk: " + e.Reason
}
