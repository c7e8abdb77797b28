package custody

import (
	"fmt"

	"evidencechain/pkg/types"
)

func malformed(format string, args ...any) error {
	return types.NewError(types.ErrorKindMalformedRequest, fmt.Sprintf(format, args...), nil)
}

// blobError keeps categorized storage errors and treats everything else,
// timeouts included, as the storage being unavailable.
func blobError(err error, path string) error {
	if types.KindOf(err) != "" {
		return err
	}
	return types.NewError(types.ErrorKindStorageUnavailable, fmt.Sprintf("fetch %s", path), err)
}

func persistenceError(err error, msg string) error {
	if types.KindOf(err) != "" {
		return err
	}
	return types.NewError(types.ErrorKindPersistence, msg, err)
}
