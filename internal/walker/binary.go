package walker

import (
	"bytes"
	"path/filepath"
	"strings"
)

// sniffLength is how many leading bytes are inspected for binary content
const sniffLength = 8000

// binaryExtensions lists formats that are never text
var binaryExtensions = map[string]bool{
	// Fonts
	".woff": true, ".woff2": true, ".ttf": true, ".otf": true, ".eot": true,
	// Images
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".bmp": true,
	".ico": true, ".webp": true, ".tiff": true, ".tif": true, ".psd": true,
	// Archives
	".zip": true, ".tar": true, ".gz": true, ".bz2": true, ".xz": true,
	".7z": true, ".rar": true, ".jar": true, ".war": true, ".ear": true, ".whl": true,
	// Executables and objects
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".a": true,
	".o": true, ".obj": true, ".bin": true, ".wasm": true,
	// Media
	".mp3": true, ".mp4": true, ".avi": true, ".mov": true, ".wmv": true,
	".flv": true, ".wav": true, ".flac": true, ".ogg": true, ".webm": true,
	// Documents
	".pdf": true, ".doc": true, ".docx": true, ".xls": true, ".xlsx": true,
	".ppt": true, ".pptx": true,
	// Databases
	".db": true, ".sqlite": true, ".sqlite3": true,
	// Bytecode and serialized data
	".pyc": true, ".pyo": true, ".class": true, ".pickle": true, ".pkl": true,
	".npy": true, ".npz": true, ".parquet": true,
}

// magicNumbers are prefixes of common binary formats
var magicNumbers = [][]byte{
	{0x1F, 0x8B},             // gzip
	{0x50, 0x4B, 0x03, 0x04}, // zip
	{0x50, 0x4B, 0x05, 0x06}, // empty zip
	{0x89, 0x50, 0x4E, 0x47}, // png
	{0xFF, 0xD8, 0xFF},       // jpeg
	{0x47, 0x49, 0x46, 0x38}, // gif
	{0x25, 0x50, 0x44, 0x46}, // pdf
	{0x7F, 0x45, 0x4C, 0x46}, // elf
	{0xCA, 0xFE, 0xBA, 0xBE}, // mach-o fat / java class
	{0x77, 0x4F, 0x46, 0x46}, // woff
	{0x77, 0x4F, 0x46, 0x32}, // woff2
	{0x00, 0x61, 0x73, 0x6D}, // wasm
}

// IsBinaryExtension reports whether the path has a known binary extension
func IsBinaryExtension(path string) bool {
	return binaryExtensions[strings.ToLower(filepath.Ext(path))]
}

// IsBinaryContent reports whether content looks binary: a known magic number,
// a NUL byte, or mostly control characters in the leading bytes
func IsBinaryContent(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	sample := content
	if len(sample) > sniffLength {
		sample = sample[:sniffLength]
	}

	for _, magic := range magicNumbers {
		if bytes.HasPrefix(sample, magic) {
			return true
		}
	}
	if bytes.IndexByte(sample, 0) >= 0 {
		return true
	}

	control := 0
	for _, b := range sample {
		if b < 0x20 && b != '\t' && b != '\n' && b != '\r' && b != '\f' {
			control++
		}
	}
	return control > len(sample)*30/100
}
