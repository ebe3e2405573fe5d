package process

import (
	"time"

	gops "github.com/shirou/gopsutil/v3/process"
)

// Alive checks if a process still exists
func Alive(pid int) bool {
	exists, err := gops.PidExists(int32(pid))
	return err == nil && exists
}

// CollectTargetInfo gathers information about a process.
// Fields that can't be read are left empty; ok is false once the process is gone.
func CollectTargetInfo(pid int) (*TargetInfo, bool) {
	p, err := gops.NewProcess(int32(pid))
	if err != nil {
		return nil, false
	}

	info := &TargetInfo{
		PID:         pid,
		LastUpdated: time.Now(),
	}

	if exe, err := p.Exe(); err == nil {
		info.ExePath = exe
	}
	if cmdline, err := p.Cmdline(); err == nil {
		info.CmdLine = cmdline
	}
	if username, err := p.Username(); err == nil {
		info.Username = username
	}
	if mem, err := p.MemoryInfo(); err == nil && mem != nil {
		info.MemoryUsage = mem.RSS
	}
	if percent, err := p.MemoryPercent(); err == nil {
		info.MemoryPercent = float64(percent)
	}
	if threads, err := p.NumThreads(); err == nil {
		info.ThreadCount = int(threads)
	}
	if created, err := p.CreateTime(); err == nil {
		info.StartTime = time.UnixMilli(created)
	}

	return info, true
}
