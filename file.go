package oaisim

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// readMaybeCompressed returns the content of a file, that may be
// transparently decompressed on the fly.
func readMaybeCompressed(filename string) ([]byte, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var reader io.Reader
	gz, err := gzip.NewReader(bufio.NewReader(file))
	switch err {
	case nil:
		defer gz.Close()
		reader = gz
	case gzip.ErrHeader, io.ErrUnexpectedEOF, io.EOF:
		if _, err := file.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		reader = bufio.NewReader(file)
	default:
		return nil, err
	}
	return io.ReadAll(reader)
}

// formatExt is the lowercased extension that names the file format,
// ignoring a trailing .gz.
func formatExt(filename string) string {
	name := filename
	if strings.EqualFold(filepath.Ext(name), ".gz") {
		name = name[:len(name)-3]
	}
	return strings.ToLower(filepath.Ext(name))
}
