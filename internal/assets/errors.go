package assets

import (
	"fmt"
	"io/fs"

	"mcbake/pkg/blockmodel"
)

// MissingAssetError reports an asset that no layer provides.
type MissingAssetError struct {
	Kind     string
	Location blockmodel.Location
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("missing %s %s", e.Kind, e.Location)
}

func (e *MissingAssetError) Is(target error) bool {
	return target == fs.ErrNotExist
}
