//go:build windows

package inventory

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/go-ole/go-ole"
	"github.com/go-ole/go-ole/oleutil"

	"github.com/TravisRivera14/DriverAid/internal/drivers"
)

// SystemSupported reports whether this platform has a live driver inventory.
const SystemSupported = true

const signedDriverQuery = "SELECT DeviceName, FriendlyName, DriverVersion, DriverProviderName, HardWareID FROM Win32_PnPSignedDriver"

// WMISource lists installed drivers from Win32_PnPSignedDriver.
type WMISource struct{}

// NewSystemSource returns the WMI-backed inventory source.
func NewSystemSource() drivers.InventorySource {
	return &WMISource{}
}

// SystemAvailable checks that the WMI cimv2 namespace can be reached.
func SystemAvailable() error {
	return withWMIService(func(service *ole.IDispatch) error {
		return nil
	})
}

// List returns one RawDevice per signed driver, in WMI enumeration order.
func (s *WMISource) List(ctx context.Context) ([]drivers.RawDevice, error) {
	var devices []drivers.RawDevice
	err := withWMIService(func(service *ole.IDispatch) error {
		resultVar, err := oleutil.CallMethod(service, "ExecQuery", signedDriverQuery)
		if err != nil {
			return fmt.Errorf("wmi query failed: %w", err)
		}
		defer resultVar.Clear()

		result := resultVar.ToIDispatch()
		if result == nil {
			return fmt.Errorf("wmi query failed: nil result")
		}
		defer result.Release()

		countVar, err := oleutil.GetProperty(result, "Count")
		if err != nil {
			return fmt.Errorf("wmi result count failed: %w", err)
		}
		count := int(countVar.Val)
		countVar.Clear()

		devices = collectDevices(count, func(i int) (drivers.RawDevice, error) {
			return readDevice(result, i)
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("driver inventory listed", "count", len(devices))
	return devices, nil
}

func withWMIService(action func(service *ole.IDispatch) error) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if err := ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED); err != nil {
		return fmt.Errorf("failed to initialize COM: %w", err)
	}
	defer ole.CoUninitialize()

	unknown, err := oleutil.CreateObject("WbemScripting.SWbemLocator")
	if err != nil {
		return fmt.Errorf("failed to create WMI locator: %w", err)
	}
	defer unknown.Release()

	locator, err := unknown.QueryInterface(ole.IID_IDispatch)
	if err != nil {
		return fmt.Errorf("failed to query WMI locator: %w", err)
	}
	defer locator.Release()

	serviceVar, err := oleutil.CallMethod(locator, "ConnectServer", nil, `root\cimv2`)
	if err != nil {
		return fmt.Errorf("failed to connect to WMI: %w", err)
	}
	defer serviceVar.Clear()

	service := serviceVar.ToIDispatch()
	if service == nil {
		return fmt.Errorf("failed to connect to WMI: nil service")
	}

	return action(service)
}

// stringProperty reads a WMI property as text. Null becomes "", string arrays
// are joined with ", ".
func stringProperty(item *ole.IDispatch, name string) string {
	v, err := oleutil.GetProperty(item, name)
	if err != nil {
		return ""
	}
	defer v.Clear()

	if v.VT&ole.VT_ARRAY != 0 {
		arr := v.ToArray()
		if arr == nil {
			return ""
		}
		values := arr.ToStringArray()
		return strings.TrimSpace(strings.Join(values, ", "))
	}

	switch val := v.Value().(type) {
	case string:
		return strings.TrimSpace(val)
	case nil:
		return ""
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// readDevice reads entry i of a Win32_PnPSignedDriver result set.
func readDevice(result *ole.IDispatch, i int) (drivers.RawDevice, error) {
	itemVar, err := oleutil.CallMethod(result, "ItemIndex", i)
	if err != nil {
		return drivers.RawDevice{}, err
	}
	defer itemVar.Clear()

	item := itemVar.ToIDispatch()
	if item == nil {
		return drivers.RawDevice{}, fmt.Errorf("nil dispatch")
	}

	device := stringProperty(item, "DeviceName")
	if device == "" {
		device = stringProperty(item, "FriendlyName")
	}
	return drivers.RawDevice{
		Device:           device,
		Provider:         stringProperty(item, "DriverProviderName"),
		VersionInstalled: stringProperty(item, "DriverVersion"),
		HardwareID:       stringProperty(item, "HardWareID"),
	}, nil
}
