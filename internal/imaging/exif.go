package imaging

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Metadata holds capture metadata extracted from an image's EXIF block.
// Present distinguishes "no metadata at all" from "metadata present but
// empty"; consumers treat absence as neutral, never as an anomaly.
type Metadata struct {
	Present    bool       `json:"present"`
	CapturedAt *time.Time `json:"capturedAt,omitempty"`
	DeviceTag  string     `json:"deviceTag,omitempty"`
	GPSTag     string     `json:"gpsTag,omitempty"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
}

// ExtractMetadata parses embedded EXIF out of raw image bytes. It never
// fails: corrupt, stripped or absent metadata yields a zero Metadata
// with Present=false.
func ExtractMetadata(data []byte) (meta Metadata) {
	// goexif can panic on certain malformed TIFF structures; a stripped
	// or hostile EXIF block must not take the evaluation down with it.
	defer func() {
		if r := recover(); r != nil {
			meta = Metadata{}
		}
	}()

	if len(data) == 0 {
		return Metadata{}
	}

	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return Metadata{}
	}

	meta.Present = true

	if captured, err := x.DateTime(); err == nil {
		meta.CapturedAt = &captured
	}

	meta.DeviceTag = deviceTag(x)

	if lat, lon, err := x.LatLong(); err == nil {
		meta.Latitude = &lat
		meta.Longitude = &lon
		meta.GPSTag = FormatGPSTag(lat, lon)
	}

	return meta
}

// FormatGPSTag renders a coordinate pair as the canonical tag string
// used for exact-match metadata comparison between submissions.
func FormatGPSTag(lat, lon float64) string {
	return fmt.Sprintf("%.6f,%.6f", lat, lon)
}

func deviceTag(x *exif.Exif) string {
	var parts []string
	for _, field := range []exif.FieldName{exif.Make, exif.Model} {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		if val, err := tag.StringVal(); err == nil {
			if val = strings.TrimSpace(val); val != "" {
				parts = append(parts, val)
			}
		}
	}
	return strings.Join(parts, " ")
}
