package scrape

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// ErrNoXMLPayload is returned when a decompressed artifact contains no usable
// XML member.
var ErrNoXMLPayload = errors.New("no XML payload in archive")

// ExtractXML decompresses a downloaded feed artifact down to its XML payload.
// Artifacts are gzip files, some of which wrap a tar archive. In the tar
// case the payload conventionally lives under a directory mirroring the
// archive's base name (name/name.xml); when that member is absent, any .xml
// member that is not a store-directory listing is accepted.
func ExtractXML(fileName string, data []byte) ([]byte, error) {
	gz, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open gzip stream: %w", err)
	}
	defer gz.Close()

	payload, err := io.ReadAll(gz)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress: %w", err)
	}

	if !isTar(payload) {
		return payload, nil
	}

	return extractFromTar(archiveBase(fileName), payload)
}

// archiveBase strips the compression extensions from a file name:
// "PriceFull123-001-202608290600.tar.gz" -> "PriceFull123-001-202608290600".
func archiveBase(fileName string) string {
	base := path.Base(fileName)
	base = strings.TrimSuffix(base, ".gz")
	base = strings.TrimSuffix(base, ".tar")
	return base
}

// isTar sniffs the ustar magic at its fixed offset.
func isTar(data []byte) bool {
	return len(data) > 262 && string(data[257:262]) == "ustar"
}

func extractFromTar(base string, payload []byte) ([]byte, error) {
	expected := base + "/" + base + ".xml"

	var fallback []byte
	tr := tar.NewReader(bytes.NewReader(payload))
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read tar member: %w", err)
		}
		if hdr.Typeflag != tar.TypeReg {
			continue
		}

		name := strings.TrimPrefix(hdr.Name, "./")
		if name == expected {
			return io.ReadAll(tr)
		}

		if fallback == nil && isXMLMember(name) {
			data, err := io.ReadAll(tr)
			if err != nil {
				return nil, fmt.Errorf("failed to read tar member %s: %w", name, err)
			}
			fallback = data
		}
	}

	if fallback != nil {
		return fallback, nil
	}
	return nil, ErrNoXMLPayload
}

// isXMLMember accepts .xml members except store-directory listings, which
// some chains bundle alongside the catalog.
func isXMLMember(name string) bool {
	if !strings.HasSuffix(strings.ToLower(name), ".xml") {
		return false
	}
	return !strings.HasPrefix(strings.ToLower(path.Base(name)), "stores")
}
