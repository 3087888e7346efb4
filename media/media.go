// Package media encodes binary attachments for multimodal messages.
package media

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"unicode"
)

// MaxFileSize is the largest file EncodeFile accepts (10 MiB).
const MaxFileSize = 10 * 1024 * 1024

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/="

var (
	// ErrNotExist is returned when the file to encode does not exist.
	ErrNotExist = errors.New("file does not exist")
	// ErrTooLarge is returned when the file exceeds MaxFileSize.
	ErrTooLarge = errors.New("file too large")
)

// FileError represents a failure to read or encode a file.
type FileError struct {
	Path string
	Size int64 // file size in bytes, set for ErrTooLarge
	Err  error
}

// Error returns a message naming the file.
func (e *FileError) Error() string {
	if errors.Is(e.Err, ErrTooLarge) {
		return fmt.Sprintf("image file too large: %s (%d bytes)", e.Path, e.Size)
	}
	return fmt.Sprintf("image file %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error {
	return e.Err
}

// Encode returns the standard base64 encoding of data.
func Encode(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// EncodeFile reads the file at path and returns its base64 encoding.
func EncodeFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", &FileError{Path: path, Err: ErrNotExist}
		}
		return "", &FileError{Path: path, Err: err}
	}
	if info.Size() > MaxFileSize {
		return "", &FileError{Path: path, Size: info.Size(), Err: ErrTooLarge}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", &FileError{Path: path, Err: err}
	}
	return Encode(data), nil
}

// IsBase64 reports whether s looks like base64 data. Data URIs of the form
// data:<mime>;base64,<payload> are accepted without inspecting the payload.
// Whitespace is ignored. The remaining characters must come from the base64
// alphabet and their count must be a multiple of four. Zero or two '='
// characters are accepted; one, or more than two, are not.
func IsBase64(s string) bool {
	if s == "" {
		return false
	}
	if strings.HasPrefix(s, "data:") && strings.Contains(s, ";base64,") {
		return true
	}

	padding := 0
	length := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if !strings.ContainsRune(alphabet, r) {
			return false
		}
		if r == '=' {
			padding++
			if padding > 2 {
				return false
			}
		}
		length++
	}

	return length%4 == 0 && padding != 1
}

// SplitDataURI splits data:<mime>;base64,<payload> into its parts.
func SplitDataURI(s string) (mimeType, payload string, ok bool) {
	rest, found := strings.CutPrefix(s, "data:")
	if !found {
		return "", "", false
	}
	mimeType, payload, found = strings.Cut(rest, ";base64,")
	if !found {
		return "", "", false
	}
	return mimeType, payload, true
}

// DataURI formats base64 payload as a data URI.
func DataURI(mimeType, payload string) string {
	return "data:" + mimeType + ";base64," + payload
}
