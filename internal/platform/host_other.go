//go:build !linux

package platform

import "runtime"

func hostUnits() int {
	return runtime.NumCPU()
}
