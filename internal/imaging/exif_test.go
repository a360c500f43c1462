package imaging

import (
	"bytes"
	"image"
	"image/png"
	"testing"
)

func TestExtractMetadataAbsent(t *testing.T) {
	// PNG carries no EXIF block at all
	img := image.NewGray(image.Rect(0, 0, 8, 8))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}

	meta := ExtractMetadata(buf.Bytes())
	if meta.Present {
		t.Error("PNG without EXIF should report Present=false")
	}
	if meta.DeviceTag != "" || meta.GPSTag != "" {
		t.Error("Absent metadata should leave tags empty")
	}
	if meta.CapturedAt != nil {
		t.Error("Absent metadata should leave CapturedAt nil")
	}
}

func TestExtractMetadataNeverFails(t *testing.T) {
	// Corrupt, empty and hostile buffers all degrade to absence
	for _, data := range [][]byte{
		nil,
		{},
		[]byte("garbage"),
		{0xFF, 0xD8, 0xFF, 0xE1, 0x00, 0x04, 'E', 'x'}, // truncated JPEG APP1
	} {
		meta := ExtractMetadata(data)
		if meta.Present {
			t.Errorf("Buffer %v should not yield metadata", data)
		}
	}
}

func TestFormatGPSTag(t *testing.T) {
	tag := FormatGPSTag(18.5204, 73.8567)
	if tag != "18.520400,73.856700" {
		t.Errorf("Unexpected GPS tag format: %s", tag)
	}

	// Canonical formatting makes equal coordinates compare equal
	if FormatGPSTag(1.0, 2.0) != FormatGPSTag(1.0, 2.0) {
		t.Error("Identical coordinates should format identically")
	}
}
