package launch

import (
	"fmt"
	"runtime"

	"github.com/klauspost/cpuid/v2"
)

// Device describes the host executor that blocks run on.
type Device struct {
	Name         string
	LogicalCores int
	CacheLine    int
	AVX2         bool
	Workers      int // goroutines used per launch
}

// HostDevice probes the CPU. A non-positive workers value means one worker
// per logical core.
func HostDevice(workers int) *Device {
	d := &Device{
		Name:         cpuid.CPU.BrandName,
		LogicalCores: cpuid.CPU.LogicalCores,
		CacheLine:    cpuid.CPU.CacheLine,
		AVX2:         cpuid.CPU.Supports(cpuid.AVX2),
	}
	if d.Name == "" {
		d.Name = runtime.GOARCH
	}
	if d.LogicalCores <= 0 {
		d.LogicalCores = runtime.NumCPU()
	}
	if workers <= 0 {
		workers = d.LogicalCores
	}
	d.Workers = workers
	return d
}

func (d *Device) String() string {
	return fmt.Sprintf("%s (%d logical cores, %d workers)", d.Name, d.LogicalCores, d.Workers)
}
