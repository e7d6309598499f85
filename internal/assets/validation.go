package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
)

// ValidateAssetName checks that an asset name is safe for use as a filename.
// Names may not be empty or contain path separators or dots.
func ValidateAssetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInvalidAssetName)
	}
	if strings.ContainsAny(name, "/\\.") {
		return fmt.Errorf("%w: %q", ErrInvalidAssetName, name)
	}
	return nil
}

func isNotExist(err error) bool {
	return err != nil && errors.Is(err, fs.ErrNotExist)
}
