package photoloader

import (
	"github.com/rwcarlsen/goexif/exif"
	"os"
	"time"
	"vincit.fi/photo-frame/common/logger"
)

// CaptureTime returns the EXIF DateTimeOriginal of the file. The second
// return value is false when the file has no usable EXIF date.
func CaptureTime(path string) (time.Time, bool) {
	file, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer file.Close()

	decoded, err := exif.Decode(file)
	if err != nil {
		logger.Trace.Printf("No EXIF data in '%s': %s", path, err)
		return time.Time{}, false
	}

	taken, err := decoded.DateTime()
	if err != nil {
		return time.Time{}, false
	}
	return taken, true
}
