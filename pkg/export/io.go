package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/matzehuels/stratagraph/pkg/errors"
)

// CompressedExt selects zstd compression in WriteFile.
const CompressedExt = ".zst"

var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

// Write encodes doc as indented JSON.
func Write(w io.Writer, doc Document) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode document")
	}
	return nil
}

// WriteCompressed encodes doc as zstd-compressed JSON.
func WriteCompressed(w io.Writer, doc Document) error {
	zw, err := zstd.NewWriter(w)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "zstd writer")
	}
	if err := Write(zw, doc); err != nil {
		zw.Close()
		return err
	}
	if err := zw.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "zstd flush")
	}
	return nil
}

// WriteFile writes doc to path. Paths ending in ".zst" are compressed.
func WriteFile(path string, doc Document) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), CompressedExt) {
		err = WriteCompressed(f, doc)
	} else {
		err = Write(f, doc)
	}
	if err != nil {
		return err
	}
	return f.Close()
}

// Read decodes a document, transparently decompressing zstd input.
// Returns MALFORMED_DOCUMENT when the content is not a valid document.
func Read(r io.Reader) (Document, error) {
	br := bufio.NewReader(r)
	head, _ := br.Peek(len(zstdMagic))

	var src io.Reader = br
	if bytes.Equal(head, zstdMagic) {
		zr, err := zstd.NewReader(br)
		if err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeMalformedDocument, err, "zstd reader")
		}
		defer zr.Close()
		src = zr
	}

	var doc Document
	if err := json.NewDecoder(src).Decode(&doc); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeMalformedDocument, err, "decode document")
	}
	if doc.Version == "" {
		return Document{}, errors.New(errors.ErrCodeMalformedDocument, "document has no version")
	}
	if doc.Graphs == nil {
		doc.Graphs = map[string]GraphDoc{}
	}
	return doc, nil
}

// ReadFile reads a document from path.
func ReadFile(path string) (Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Document{}, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return Document{}, errors.Wrap(errors.ErrCodeInternal, err, "open %s", path)
	}
	defer f.Close()
	return Read(f)
}
