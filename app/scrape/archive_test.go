package scrape

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"testing"
)

func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		t.Fatalf("failed to write gzip data: %v", err)
	}
	if err := gz.Close(); err != nil {
		t.Fatalf("failed to close gzip writer: %v", err)
	}
	return buf.Bytes()
}

func tarBytes(t *testing.T, members map[string][]byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for name, data := range members {
		hdr := &tar.Header{Name: name, Mode: 0644, Size: int64(len(data))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatalf("failed to write tar header: %v", err)
		}
		if _, err := tw.Write(data); err != nil {
			t.Fatalf("failed to write tar member: %v", err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatalf("failed to close tar writer: %v", err)
	}
	return buf.Bytes()
}

func TestExtractXMLPlainGzip(t *testing.T) {
	xml := []byte("<Root><Items></Items></Root>")
	payload, err := ExtractXML("PriceFull111-001-202608290600.gz", gzipBytes(t, xml))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !bytes.Equal(payload, xml) {
		t.Errorf("expected payload %q, got %q", xml, payload)
	}
}

func TestExtractXMLTarConventionalMember(t *testing.T) {
	xml := []byte("<Prices></Prices>")
	base := "PriceFull111-001-202608290600"
	archive := tarBytes(t, map[string][]byte{
		base + "/" + base + ".xml": xml,
	})

	payload, err := ExtractXML(base+".gz", gzipBytes(t, archive))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !bytes.Equal(payload, xml) {
		t.Errorf("expected payload %q, got %q", xml, payload)
	}
}

func TestExtractXMLTarFallbackMember(t *testing.T) {
	xml := []byte("<Root></Root>")
	archive := tarBytes(t, map[string][]byte{
		"Stores111.xml": []byte("<Stores/>"),
		"catalog.xml":   xml,
		"readme.txt":    []byte("hello"),
	})

	payload, err := ExtractXML("PriceFull111-001-202608290600.tar.gz", gzipBytes(t, archive))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !bytes.Equal(payload, xml) {
		t.Errorf("expected fallback member, got %q", payload)
	}
}

func TestExtractXMLTarNoPayload(t *testing.T) {
	archive := tarBytes(t, map[string][]byte{
		"Stores111.xml": []byte("<Stores/>"),
	})

	if _, err := ExtractXML("PriceFull111-001-202608290600.gz", gzipBytes(t, archive)); err == nil {
		t.Error("expected error for archive without usable XML")
	}
}

func TestExtractXMLNotGzip(t *testing.T) {
	if _, err := ExtractXML("PriceFull111-001-202608290600.gz", []byte("plain text")); err == nil {
		t.Error("expected error for non-gzip input")
	}
}
