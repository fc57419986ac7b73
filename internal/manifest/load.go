package manifest

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/shogo82148/androidbinary"
)

// resXMLType is the chunk type heading a compiled (AXML) manifest.
const resXMLType = 0x0003

// IsBinary reports whether data looks like a compiled AXML document rather
// than text XML.
func IsBinary(data []byte) bool {
	if len(data) < 8 {
		return false
	}
	return binary.LittleEndian.Uint16(data[0:2]) == resXMLType &&
		binary.LittleEndian.Uint16(data[2:4]) == 8
}

// Load reads the manifest at path and returns it as text XML. Compiled
// manifests, as found in an unzipped APK, are decoded first.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}
	if !IsBinary(data) {
		return data, nil
	}
	text, err := decodeBinary(data)
	if err != nil {
		return nil, &MalformedManifestError{Path: path, Err: err}
	}
	return text, nil
}

func decodeBinary(data []byte) ([]byte, error) {
	f, err := androidbinary.NewXMLFile(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "decoding binary xml")
	}
	return io.ReadAll(f.Reader())
}
