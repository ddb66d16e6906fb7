// Package filestore manages uploaded files: temporary staging during
// verification, permanent storage after submission, and generated cards.
package filestore

import (
	"io"
)

// Store separates temporary staging from permanent storage. Promote must be
// atomic from the caller's perspective (a rename, not copy+delete): there is
// no window where the document exists in neither or both locations.
type Store interface {
	StageTemp(r io.Reader, originalName string) (path string, err error)
	PromoteDocument(tempPath, epicNumber, uniqueID string) (permanentPath string, err error)
	SavePhoto(r io.Reader, epicNumber, uniqueID, originalName string) (path string, err error)
	CardPath(stub string) string
	Remove(path string)
}
