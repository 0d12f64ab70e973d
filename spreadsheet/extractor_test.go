package spreadsheet

import (
	"archive/zip"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildZip(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func TestExtractImagesReadsMediaEntries(t *testing.T) {
	data := buildZip(t, map[string][]byte{
		"xl/media/image1.png":   []byte("first"),
		"xl/media/image2.jpeg":  []byte("second"),
		"xl/worksheets/s1.xml":  []byte("<sheet/>"),
		"docProps/app.xml":      []byte("<props/>"),
		"[Content_Types].xml":   []byte("<types/>"),
		"xl/sharedStrings.xml":  []byte("<sst/>"),
		"xl/media/.placeholder": nil,
	})

	blobs := ExtractImages(data)
	require.Len(t, blobs, 2)
	for _, b := range blobs {
		assert.NotEmpty(t, b)
	}
}

func TestExtractImagesNoMedia(t *testing.T) {
	data := buildZip(t, map[string][]byte{
		"xl/worksheets/s1.xml": []byte("<sheet/>"),
	})
	assert.Empty(t, ExtractImages(data))
}

func TestExtractImagesCorruptContainer(t *testing.T) {
	assert.Empty(t, ExtractImages([]byte("this is not a zip archive")))
	assert.Empty(t, ExtractImages(nil))
}
