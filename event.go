package dirwatch

// EventKind classifies a filesystem change notification.
type EventKind int

const (
	// KindUnknown represents an unclassified notification
	KindUnknown EventKind = iota
	// KindCreated indicates a file or directory was created
	KindCreated
	// KindModified indicates a file's contents were written
	KindModified
	// KindDeleted indicates a file or directory was removed
	KindDeleted
	// KindRenamed indicates a file or directory was moved away
	KindRenamed
	// KindDirectoryBatch indicates a directory-level "contents changed"
	// notification that names no concrete file. It never matches a Filter.
	KindDirectoryBatch
)

// String returns the string representation of an EventKind
func (k EventKind) String() string {
	switch k {
	case KindCreated:
		return "created"
	case KindModified:
		return "modified"
	case KindDeleted:
		return "deleted"
	case KindRenamed:
		return "renamed"
	case KindDirectoryBatch:
		return "directory"
	default:
		return "unknown"
	}
}

// Event is a single filesystem change, translated from the notification
// backend into a normalized form.
type Event struct {
	// Kind classifies the change
	Kind EventKind
	// Path is the affected path, relative to the watched root
	Path string
	// RenamedTo is the destination path for rename events when the backend
	// reports one; empty otherwise
	RenamedTo string
}
