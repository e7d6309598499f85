package epub

import (
	"strings"

	"github.com/google/uuid"
)

// bookNamespace scopes identifiers derived from FB2 document ids.
var bookNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/alnah/go-fb2epub/book"))

// Identifier returns a stable urn:uuid identifier for a book. The FB2
// document id is used when present, otherwise the source bytes, so that
// converting the same file twice yields the same identifier.
func Identifier(documentID string, source []byte) string {
	var id uuid.UUID
	if documentID = strings.TrimSpace(documentID); documentID != "" {
		id = uuid.NewSHA1(bookNamespace, []byte(documentID))
	} else {
		id = uuid.NewSHA1(uuid.NameSpaceOID, source)
	}
	return "urn:uuid:" + id.String()
}
