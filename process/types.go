package process

import (
	"time"
)

// GameExecutable is the marker searched for in the command line of the game process
const GameExecutable = `\MonsterHunterWorld.exe`

// TargetInfo holds what we know about the attached game process
type TargetInfo struct {
	PID           int
	ExePath       string
	CmdLine       string
	Username      string
	MemoryUsage   uint64  // resident set size in bytes
	MemoryPercent float64 // share of system memory
	ThreadCount   int
	StartTime     time.Time
	LastUpdated   time.Time
}

// Locator finds the pid of the target process
type Locator interface {
	Find() (int, error)
}
