package types

import (
	cerrors "slvcodec/internal/errors"
)

func newInvalidValue(format string, args ...interface{}) error {
	return cerrors.Newf(cerrors.InvalidValue, nil, format, args...)
}

func newResolutionError(context map[string]string, format string, args ...interface{}) error {
	return cerrors.Newf(cerrors.ResolutionError, context, format, args...)
}

func newUnsupportedType(format string, args ...interface{}) error {
	return cerrors.Newf(cerrors.UnsupportedType, nil, format, args...)
}
