//go:build !unix

package planblob

import (
	"errors"
	"os"
)

func mapFile(*os.File, int) ([]byte, func(), error) {
	return nil, nil, errors.New("mmap unavailable")
}
