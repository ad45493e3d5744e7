package platform

import (
	"runtime"

	"golang.org/x/sys/cpu"
)

// hostBufferBytes approximates a per-core staging area with a typical L1d size.
const hostBufferBytes = 48 * 1024

// Host describes the machine this process runs on, treating each schedulable
// CPU as a unit.
func Host() Info {
	return Info{
		Name:        "host",
		Units:       hostUnits(),
		BufferBytes: hostBufferBytes,
		Description: runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// Features lists the SIMD features of the host CPU that a host-emulated
// kernel could use.
func Features() []string {
	var out []string
	add := func(ok bool, name string) {
		if ok {
			out = append(out, name)
		}
	}
	switch runtime.GOARCH {
	case "amd64":
		add(cpu.X86.HasSSE41, "sse4.1")
		add(cpu.X86.HasAVX, "avx")
		add(cpu.X86.HasAVX2, "avx2")
		add(cpu.X86.HasFMA, "fma")
		add(cpu.X86.HasAVX512F, "avx512f")
	case "arm64":
		add(cpu.ARM64.HasASIMD, "neon")
		add(cpu.ARM64.HasASIMDHP, "fp16")
		add(cpu.ARM64.HasSVE, "sve")
		add(cpu.ARM64.HasSVE2, "sve2")
	}
	return out
}
