package writer

import (
	"fmt"

	"github.com/mctools/mcpl/errs"
)

func duplicateBlobKeyError(key string) error {
	return fmt.Errorf("%w: %q", errs.ErrDuplicateBlobKey, key)
}
