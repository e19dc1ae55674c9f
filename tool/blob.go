package tool

import (
	"io"

	"github.com/mctools/mcpl/section"
)

// ExtractBlob writes the raw bytes of the blob stored under key to w. It
// reports false if no blob with that key exists.
func ExtractBlob(w io.Writer, h *section.Header, key string) (bool, error) {
	for i, k := range h.BlobKeys {
		if string(k) == key {
			_, err := w.Write(h.Blobs[i])
			return true, err
		}
	}
	return false, nil
}
