package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnTengye/contractreview/backend/model"
	"github.com/gabriel-vasile/mimetype"
)

const (
	MIMETypePDF  = "application/pdf"
	MIMETypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var (
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
	ErrEmptyFile           = errors.New("empty file")
	ErrParse               = errors.New("failed to parse document")
)

// ParseError wraps a loader failure for a given document type
type ParseError struct {
	MIMEType string
	Err      error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.MIMEType, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// Upload is a raw document submitted for loading
type Upload struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Loader turns raw document bytes into a contract
type Loader interface {
	Parse(ctx context.Context, data []byte, mimeType string) (*model.Contract, error)
}

// LoaderFunc adapts a function to the Loader interface
type LoaderFunc func(ctx context.Context, data []byte, mimeType string) (*model.Contract, error)

func (f LoaderFunc) Parse(ctx context.Context, data []byte, mimeType string) (*model.Contract, error) {
	return f(ctx, data, mimeType)
}

// FixtureLoader ignores the document and returns the sample agreement after
// a fixed processing delay
type FixtureLoader struct {
	Delay time.Duration
}

func (l FixtureLoader) Parse(ctx context.Context, data []byte, mimeType string) (*model.Contract, error) {
	if l.Delay > 0 {
		timer := time.NewTimer(l.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return FixtureContract(), nil
}

// UploadValidator accepts PDF and DOCX documents up to MaxBytes
type UploadValidator struct {
	MaxBytes int64 // 0 = unlimited
}

// Validate returns the effective MIME type of the upload. The type comes
// from the content; a declared type must agree with it.
func (v UploadValidator) Validate(u Upload) (string, error) {
	if len(u.Data) == 0 {
		return "", ErrEmptyFile
	}
	if v.MaxBytes > 0 && int64(len(u.Data)) > v.MaxBytes {
		return "", fmt.Errorf("%w: %d bytes exceeds %d", ErrFileTooLarge, len(u.Data), v.MaxBytes)
	}

	detected := mimetype.Detect(u.Data)
	var effective string
	switch {
	case detected.Is(MIMETypePDF):
		effective = MIMETypePDF
	case detected.Is(MIMETypeDOCX), detected.Is("application/zip"):
		// Packages that do not list word/ first are detected as a plain zip
		if isWordPackage(u.Data) {
			effective = MIMETypeDOCX
		}
	}

	declared := u.MIMEType
	switch {
	case declared != "" && declared != "application/octet-stream" && declared != MIMETypePDF && declared != MIMETypeDOCX:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFileType, declared)
	case effective == "":
		return "", fmt.Errorf("%w: detected %s", ErrUnsupportedFileType, detected.String())
	case declared == MIMETypePDF || declared == MIMETypeDOCX:
		if declared != effective {
			return "", fmt.Errorf("%w: declared %s but content is %s", ErrUnsupportedFileType, declared, effective)
		}
	}
	return effective, nil
}

// isWordPackage reports whether data is a zip holding a WordprocessingML body
func isWordPackage(data []byte) bool {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return false
	}
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			return true
		}
	}
	return false
}
