package sources

import (
	"encoding/binary"
	"strings"
	"unicode/utf16"
)

const dosDevicePrefix = `\DosDevices\`

// usbStorageDrive reads one MountedDevices value. It reports the drive letter
// ("E:") and device path for letters backed by USB mass storage; volume GUID
// entries and fixed disks (binary signature blobs) are skipped.
func usbStorageDrive(name string, data []byte) (letter, path string, ok bool) {
	if !strings.HasPrefix(name, dosDevicePrefix) {
		return "", "", false
	}

	path = decodeUTF16(data)
	if !strings.Contains(strings.ToUpper(path), "USBSTOR") {
		return "", "", false
	}
	return strings.TrimPrefix(name, dosDevicePrefix), path, true
}

// decodeUTF16 converts a little-endian UTF-16 registry blob to a string,
// stopping at the first NUL
func decodeUTF16(b []byte) string {
	u := make([]uint16, len(b)/2)
	for i := range u {
		u[i] = binary.LittleEndian.Uint16(b[2*i:])
	}
	for i, c := range u {
		if c == 0 {
			u = u[:i]
			break
		}
	}
	return string(utf16.Decode(u))
}
