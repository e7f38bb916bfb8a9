//go:build windows

package patching

import (
	"fmt"
	"os"
	"time"
	"unsafe"

	"github.com/shirou/gopsutil/v3/disk"
	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

// RunPreflight runs the enabled pre-flight checks and returns a combined result.
func RunPreflight(opts PreflightOptions) PreflightResult {
	result := PreflightResult{OK: true}

	if opts.CheckServiceHealth {
		check := checkWUServiceHealth()
		result.Checks = append(result.Checks, check)
		if !check.Passed {
			result.OK = false
		}
	}

	if opts.CheckDiskSpace {
		check := checkDiskSpace(opts.MinDiskSpaceGB)
		result.Checks = append(result.Checks, check)
		if !check.Passed {
			result.OK = false
		}
	}

	return result
}

// checkWUServiceHealth ensures the Windows Update service (wuauserv) is running,
// starting it and waiting up to 30 seconds if it is stopped.
func checkWUServiceHealth() PreflightCheck {
	check := PreflightCheck{Name: "service_health"}

	m, err := mgr.Connect()
	if err != nil {
		check.Message = fmt.Sprintf("failed to connect to service manager: %v", err)
		return check
	}
	defer m.Disconnect()

	s, err := m.OpenService("wuauserv")
	if err != nil {
		check.Message = fmt.Sprintf("failed to open wuauserv service: %v", err)
		return check
	}
	defer s.Close()

	status, err := s.Query()
	if err != nil {
		check.Message = fmt.Sprintf("failed to query wuauserv status: %v", err)
		return check
	}
	if status.State == svc.Running {
		check.Passed = true
		check.Message = "wuauserv is running"
		return check
	}

	if err := s.Start(); err != nil {
		check.Message = fmt.Sprintf("wuauserv is not running and failed to start: %v", err)
		return check
	}

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		status, err = s.Query()
		if err != nil {
			check.Message = fmt.Sprintf("failed to query wuauserv after start: %v", err)
			return check
		}
		if status.State == svc.Running {
			check.Passed = true
			check.Message = "wuauserv started"
			return check
		}
		time.Sleep(time.Second)
	}

	check.Message = fmt.Sprintf("wuauserv did not reach running state within 30s (state %d)", status.State)
	return check
}

// checkDiskSpace verifies the system drive has at least minGB free, since driver
// packages are downloaded there before install.
func checkDiskSpace(minGB float64) PreflightCheck {
	check := PreflightCheck{Name: "disk_space"}

	systemDrive := os.Getenv("SystemDrive")
	if systemDrive == "" {
		systemDrive = "C:"
	}

	usage, err := disk.Usage(systemDrive + "\\")
	if err != nil {
		check.Message = fmt.Sprintf("failed to check disk space on %s: %v", systemDrive, err)
		return check
	}

	freeGB := float64(usage.Free) / (1024 * 1024 * 1024)
	if freeGB < minGB {
		check.Message = fmt.Sprintf("insufficient disk space: %.1f GB free, minimum %.1f GB required", freeGB, minGB)
		return check
	}

	check.Passed = true
	check.Message = fmt.Sprintf("%.1f GB free on %s", freeGB, systemDrive)
	return check
}

// CreateRestorePoint asks System Restore for a checkpoint before drivers change.
// Requires elevation; callers treat failure as non-fatal.
func CreateRestorePoint(description string) error {
	var (
		srclient              = windows.NewLazySystemDLL("srclient.dll")
		procSRSetRestorePoint = srclient.NewProc("SRSetRestorePointW")
	)

	if err := procSRSetRestorePoint.Find(); err != nil {
		return fmt.Errorf("SRSetRestorePoint not available: %w", err)
	}

	type restorePointInfo struct {
		EventType        uint32
		RestorePointType uint32
		SequenceNumber   int64
		Description      [256]uint16
	}
	type stateMgrStatus struct {
		Status         uint32
		SequenceNumber int64
	}

	const (
		beginSystemChange   = 100
		deviceDriverInstall = 10
	)

	rpi := restorePointInfo{
		EventType:        beginSystemChange,
		RestorePointType: deviceDriverInstall,
	}

	desc, err := windows.UTF16FromString(description)
	if err != nil {
		return fmt.Errorf("failed to convert description: %w", err)
	}
	if len(desc) > len(rpi.Description) {
		desc = append(desc[:len(rpi.Description)-1], 0)
	}
	copy(rpi.Description[:], desc)

	var status stateMgrStatus
	r, _, callErr := procSRSetRestorePoint.Call(
		uintptr(unsafe.Pointer(&rpi)),
		uintptr(unsafe.Pointer(&status)),
	)
	if r == 0 {
		return fmt.Errorf("SRSetRestorePoint failed: status=%d err=%v", status.Status, callErr)
	}
	return nil
}
