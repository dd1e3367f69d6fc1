package models

import (
	"strings"
	"time"
)

// StoredFile is an object in the user's storage folder. Name is the object
// key relative to the folder, i.e. "<unix millis>-<original name>".
type StoredFile struct {
	Name         string
	URL          string
	Size         int64
	LastModified time.Time
}

// DisplayName returns Name without its upload timestamp prefix. Names that
// carry no prefix are returned unchanged.
func (f StoredFile) DisplayName() string {
	if _, rest, ok := strings.Cut(f.Name, "-"); ok {
		return rest
	}
	return f.Name
}
