package codegen

import (
	cerrors "slvcodec/internal/errors"
)

func newUnsupportedType(identifier string) error {
	return cerrors.Newf(cerrors.UnsupportedType,
		map[string]string{"type": identifier},
		"codec generation is not supported for type %q", identifier)
}
