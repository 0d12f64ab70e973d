package spreadsheet

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
)

// mediaDir is the conventional sub-path for embedded pictures inside an
// xlsx container.
const mediaDir = "xl/media/"

// ExtractImages opens workbook bytes as a plain compressed container and
// returns the raw embedded media payloads in archive order. This pass is
// deliberately independent of the workbook-structure reader: it only needs
// the zip directory. A container with no media entries, or one that cannot
// be read at all, yields an empty result; the import then proceeds without
// images rather than failing.
func ExtractImages(data []byte) [][]byte {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil
	}

	var blobs [][]byte
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, mediaDir) || f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil || len(b) == 0 {
			continue
		}
		blobs = append(blobs, b)
	}
	return blobs
}
