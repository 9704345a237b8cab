package bench

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
)

// SysInfo describes the machine an experiment ran on.
type SysInfo struct {
	Platform  string `json:"platform"`
	CPU       string `json:"cpu"`
	Cores     int    `json:"cores"`
	Memory    string `json:"memory"`
	GoVersion string `json:"go_version"`
}

// CollectSysInfo fills what the host reports; probes that fail leave their
// field empty.
func CollectSysInfo() SysInfo {
	info := SysInfo{Cores: runtime.NumCPU(), GoVersion: runtime.Version()}
	if h, err := host.Info(); err == nil && h != nil {
		info.Platform = fmt.Sprintf("%s %s (%s)", h.Platform, h.PlatformVersion, h.KernelArch)
	}
	if c, err := cpu.Info(); err == nil && len(c) > 0 {
		info.CPU = c[0].ModelName
	}
	if vm, err := mem.VirtualMemory(); err == nil && vm != nil {
		info.Memory = fmt.Sprintf("%d GB", vm.Total/1024/1024/1024)
	}
	return info
}
