package hdlpkg

import (
	cerrors "slvcodec/internal/errors"
)

func newPortResolutionError(port, typeName string) error {
	return cerrors.Newf(cerrors.ResolutionError,
		map[string]string{"port": port, "type": typeName},
		"cannot resolve port %q's type %q", port, typeName)
}
