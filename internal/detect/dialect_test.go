package detect_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sigreer/mbedls/internal/detect"
)

func TestLinuxDialect_ExtractID(t *testing.T) {
	d := detect.LinuxDialect()

	tests := []struct {
		name   string
		line   string
		wantID string
		wantOK bool
	}{
		{"by-id link", k64fDisk, "0240000032044e45", true},
		{"ls -o line", "lrwxrwxrwx 1 root 9 Oct 18 10:00 " + k64fDisk, "0240000032044e45", true},
		{"serial interface", k64fSerial, "0240000032044e45", true},
		{"bare link name", "usb-ACME_0123456789-0:0", "0123456789", true},
		{"trailing newline", k64fDisk + "\n", "0240000032044e45", true},
		{"empty capture", "usb-MBED_microcontroller_-0:0 -> ../../sdb", "", false},
		{"ata disk", "ata-Samsung_SSD_860_EVO_S3Z9NB0K123456-part1 -> ../../sda1", "", false},
		{"no suffix", "usb-MBED_microcontroller_0240000032044e45", "", false},
		{"empty", "", "", false},
		{"garbage", "\x00\xff->", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := d.ExtractID(tt.line)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
		})
	}
}

func TestWindowsDialect_ExtractID(t *testing.T) {
	d := detect.WindowsDialect()

	id, ok := d.ExtractID(`USB\VID_0D28&PID_0204\0240000032044e45 -> COM3`)
	assert.True(t, ok)
	assert.Equal(t, "0240000032044e45", id)

	long := `_??_USBSTOR#Disk&Ven_MBED&Prod_Microcontroller&Rev_1.0#0240000032044e4500257009997b00386781000097969900&0# -> F:`
	id, ok = d.ExtractID(long)
	assert.True(t, ok)
	assert.Len(t, id, 36)

	_, ok = d.ExtractID(`\DosDevices\C: -> C:`)
	assert.False(t, ok)
}

func TestDialect_DeviceName(t *testing.T) {
	linux := detect.LinuxDialect()
	windows := detect.WindowsDialect()

	assert.Equal(t, "sdb", linux.DeviceName(k64fDisk))
	assert.Equal(t, "ttyACM0", linux.DeviceName(k64fSerial))
	assert.Equal(t, "sdb", linux.DeviceName("usb-MBED_microcontroller_0240000032044e45-0:0 -> /dev/sdb"))
	assert.Equal(t, "usb-ACME_0123456789-0:0", linux.DeviceName("usb-ACME_0123456789-0:0"))
	assert.Equal(t, "E:", windows.DeviceName(`_??_USBSTOR#Disk&Ven_MBED#0240000032044e45&0# -> E:`))
	assert.Equal(t, "COM12", windows.DeviceName(`USB\VID_0D28&PID_0204\0240000032044e45 -> COM12`))
}

func TestDialect_MountPoint(t *testing.T) {
	d := detect.LinuxDialect()
	mounts := []string{
		"/dev/sda1 on / type ext4 (rw,relatime)",
		"/dev/sdb on /media/user/MBED DISK type vfat (rw,nosuid)",
		k64fMount,
	}

	mp, ok := d.MountPoint("sdb", mounts)
	assert.True(t, ok)
	assert.Equal(t, "/media/user/MBED DISK", mp, "first matching entry wins and spaces survive")

	_, ok = d.MountPoint("sdz", mounts)
	assert.False(t, ok)

	_, ok = d.MountPoint("", mounts)
	assert.False(t, ok)

	_, ok = d.MountPoint("sdb", []string{"sdb mounted somewhere"})
	assert.False(t, ok)
}

func TestDialect_SerialPort(t *testing.T) {
	d := detect.LinuxDialect()
	serials := []string{lpcSerial, k64fSerial}

	port, ok := d.SerialPort("0240000032044e45", serials)
	assert.True(t, ok)
	assert.Equal(t, "/dev/ttyACM0", port)

	// A serial line that merely contains the id as a substring of a longer id
	// is not a match.
	_, ok = d.SerialPort("0240000032044e4", serials)
	assert.False(t, ok)
}

func TestDialect_SerialPortCaseFolding(t *testing.T) {
	serials := []string{`USB\VID_0D28&PID_0204\0240000032044e45 -> COM3`}

	port, ok := detect.WindowsDialect().SerialPort("0240000032044E45", serials)
	assert.True(t, ok)
	assert.Equal(t, "COM3", port)

	linux := []string{"usb-MBED_MBED_CMSIS-DAP_0240000032044e45-if01 -> ../../ttyACM0"}
	_, ok = detect.LinuxDialect().SerialPort("0240000032044E45", linux)
	assert.False(t, ok)
}

func TestDialect_Validate(t *testing.T) {
	assert.NoError(t, detect.LinuxDialect().Validate())
	assert.NoError(t, detect.WindowsDialect().Validate())

	d := detect.LinuxDialect()
	d.MountPattern = nil
	assert.ErrorIs(t, d.Validate(), detect.ErrInvalidDialect)
}
