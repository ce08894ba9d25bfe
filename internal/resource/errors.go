package resource

import "errors"

// Error taxonomy shared by every layer. Callers wrap these with
// fmt.Errorf("...: %w", err) and test with errors.Is.
var (
	// ErrDuplicateID is returned when two declarations share an id.
	// Build-time fatal.
	ErrDuplicateID = errors.New("duplicate id")

	// ErrUnknownID is returned when an id is absent from the registry.
	ErrUnknownID = errors.New("unknown id")

	// ErrNotFound is returned when a backend cannot locate the data.
	ErrNotFound = errors.New("not found")

	// ErrIO is returned on a read fault (e.g. SD card error).
	ErrIO = errors.New("i/o error")

	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrCorruptData       = errors.New("corrupt data")

	// ErrReadOnly is returned when a write action targets a storage that
	// cannot be written (flash, inline).
	ErrReadOnly = errors.New("read-only storage")

	// ErrInvalidDeclaration is returned for malformed manifest records.
	ErrInvalidDeclaration = errors.New("invalid declaration")
)

// ErrorKind classifies an error into the taxonomy above.
type ErrorKind int

const (
	KindUnclassified ErrorKind = iota
	KindDuplicateID
	KindUnknownID
	KindNotFound
	KindIO
	KindUnsupportedFormat
	KindCorruptData
	KindReadOnly
	KindInvalidDeclaration
)

var kindErrors = []struct {
	kind ErrorKind
	err  error
}{
	{KindDuplicateID, ErrDuplicateID},
	{KindUnknownID, ErrUnknownID},
	{KindNotFound, ErrNotFound},
	{KindIO, ErrIO},
	{KindUnsupportedFormat, ErrUnsupportedFormat},
	{KindCorruptData, ErrCorruptData},
	{KindReadOnly, ErrReadOnly},
	{KindInvalidDeclaration, ErrInvalidDeclaration},
}

// Classify returns the taxonomy kind of err, or KindUnclassified.
func Classify(err error) ErrorKind {
	if err == nil {
		return KindUnclassified
	}
	for _, ke := range kindErrors {
		if errors.Is(err, ke.err) {
			return ke.kind
		}
	}
	return KindUnclassified
}

// String returns the kind name.
func (k ErrorKind) String() string {
	switch k {
	case KindDuplicateID:
		return "DuplicateId"
	case KindUnknownID:
		return "UnknownId"
	case KindNotFound:
		return "NotFound"
	case KindIO:
		return "IOError"
	case KindUnsupportedFormat:
		return "UnsupportedFormat"
	case KindCorruptData:
		return "CorruptData"
	case KindReadOnly:
		return "ReadOnly"
	case KindInvalidDeclaration:
		return "InvalidDeclaration"
	default:
		return "Unclassified"
	}
}

// IsFatal reports whether the error kind must halt startup.
func (k ErrorKind) IsFatal() bool {
	return k == KindDuplicateID || k == KindInvalidDeclaration
}
