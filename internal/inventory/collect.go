package inventory

import (
	"github.com/TravisRivera14/DriverAid/internal/drivers"
	"github.com/TravisRivera14/DriverAid/internal/logging"
)

var log = logging.L("inventory")

// collectDevices reads count entries in order. An entry that cannot be read
// becomes an empty RawDevice so the result keeps one record per entry and
// ids assigned later do not shift.
func collectDevices(count int, read func(i int) (drivers.RawDevice, error)) []drivers.RawDevice {
	devices := make([]drivers.RawDevice, 0, count)
	for i := 0; i < count; i++ {
		device, err := read(i)
		if err != nil {
			log.Warn("unreadable driver entry", "index", i, "error", err)
			device = drivers.RawDevice{}
		}
		devices = append(devices, device)
	}
	return devices
}
