// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package assets

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

// Formats are the supported document formats.
type Formats int32

const (
	// FormatGLTF is a JSON glTF document with embedded buffers.
	FormatGLTF Formats = iota

	// FormatGLB is a binary glTF document.
	FormatGLB
)

func (f Formats) String() string {
	if f == FormatGLB {
		return "glb"
	}
	return "gltf"
}

// glbType is the file type of binary glTF documents, which start with
// the magic "glTF" followed by the container version.
var glbType = filetype.NewType("glb", "model/gltf-binary")

func init() {
	filetype.AddMatcher(glbType, func(buf []byte) bool {
		return len(buf) >= 8 && string(buf[:4]) == "glTF" && buf[4] == 2
	})
}

// DetectFormat returns the format of a document starting with the given
// bytes, or an error if it is not a glTF document.
func DetectFormat(head []byte) (Formats, error) {
	if kind, err := filetype.Match(head); err == nil && kind.Extension == glbType.Extension {
		return FormatGLB, nil
	}
	trimmed := bytes.TrimLeft(bytes.TrimPrefix(head, []byte("\xef\xbb\xbf")), " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		return FormatGLTF, nil
	}
	if kind, err := filetype.Match(head); err == nil && kind != filetype.Unknown {
		return 0, fmt.Errorf("not a glTF document: detected %s", kind.MIME.Value)
	}
	return 0, fmt.Errorf("not a glTF document")
}

// DetectFileFormat returns the format of the given file from its content.
func DetectFileFormat(path string) (Formats, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, err
	}
	ft, err := DetectFormat(head[:n])
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return ft, nil
}

// FormatFromExt returns the format to save to for the given file name.
func FormatFromExt(path string) (Formats, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gltf":
		return FormatGLTF, nil
	case ".glb":
		return FormatGLB, nil
	}
	return 0, fmt.Errorf("%s: unsupported extension; use .gltf or .glb", path)
}
