package inventory

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/TravisRivera14/DriverAid/internal/drivers"
)

// SampleSource serves a fixed inventory with known latest versions.
type SampleSource struct {
	devices []drivers.RawDevice
}

// NewSampleSource returns the built-in five-driver demonstration set.
func NewSampleSource() *SampleSource {
	return &SampleSource{devices: defaultSample()}
}

// List returns a copy of the sample devices.
func (s *SampleSource) List(ctx context.Context) ([]drivers.RawDevice, error) {
	out := make([]drivers.RawDevice, len(s.devices))
	copy(out, s.devices)
	return out, nil
}

func defaultSample() []drivers.RawDevice {
	return []drivers.RawDevice{
		{Device: "Intel I219-V Network Adapter", Provider: "Intel", VersionInstalled: "12.19.1.37", VersionLatest: "12.19.1.39", HardwareID: `PCI\VEN_8086&DEV_15BE`},
		{Device: "High Definition Audio", Provider: "Realtek", VersionInstalled: "6.0.1.8703", VersionLatest: "6.0.1.9107", HardwareID: `HDAUDIO\FUNC_01&VEN_10EC&DEV_0295`},
		{Device: "SATA AHCI Controller", Provider: "Microsoft", VersionInstalled: "10.0.19041.1", VersionLatest: "10.0.19041.1", HardwareID: `PCI\VEN_8086&DEV_A102`},
		{Device: "UHD Graphics", Provider: "Intel", VersionInstalled: "30.0.101.1191", VersionLatest: "31.0.101.5534", HardwareID: `PCI\VEN_8086&DEV_9A60`},
		{Device: "Generic USB Printer", Provider: "USB-IF", VersionInstalled: "1.0.0", VersionLatest: "1.0.2", HardwareID: `USB\VID_1234&PID_5678`},
	}
}

type sampleFile struct {
	Drivers []drivers.RawDevice `yaml:"drivers"`
}

// LoadSampleFile reads a YAML fixture of the form
//
//	drivers:
//	  - device: UHD Graphics
//	    provider: Intel
//	    version_installed: 30.0.101.1191
//	    version_latest: 31.0.101.5534
//	    hardware_id: PCI\VEN_8086&DEV_9A60
func LoadSampleFile(path string) (*SampleSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sample file: %w", err)
	}

	var f sampleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sample file %s: %w", path, err)
	}
	if len(f.Drivers) == 0 {
		return nil, fmt.Errorf("sample file %s lists no drivers", path)
	}
	return &SampleSource{devices: f.Drivers}, nil
}
