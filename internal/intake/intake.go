package intake

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	MediaTypePDF  = "application/pdf"
	MediaTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// AllowedMediaTypes lists the container formats accepted for a resume.
var AllowedMediaTypes = []string{MediaTypePDF, MediaTypeDOCX}

// Opener returns a fresh reader over the document bytes. It is called once per dispatched request.
type Opener func() (io.ReadCloser, error)

// Candidate is a document offered for selection.
type Candidate struct {
	Name      string
	MediaType string
	Open      Opener
}

// SelectedFile is an accepted candidate. Its bytes are only reachable through Open.
type SelectedFile struct {
	name      string
	mediaType string
	open      Opener
}

// FileInfo is the part of a selection the view layer is allowed to see.
type FileInfo struct {
	Name      string
	MediaType string
}

func (f *SelectedFile) Name() string { return f.name }

func (f *SelectedFile) MediaType() string { return f.mediaType }

func (f *SelectedFile) Open() (io.ReadCloser, error) {
	return f.open()
}

func (f *SelectedFile) Info() FileInfo {
	return FileInfo{Name: f.name, MediaType: f.mediaType}
}

// Intake holds at most one selected document.
type Intake struct {
	selected *SelectedFile
}

func New() *Intake {
	return &Intake{}
}

// Select accepts the candidate when its media type is allow-listed and replaces any prior selection.
// A rejected candidate leaves the current selection untouched.
func (i *Intake) Select(c Candidate) (*SelectedFile, bool) {
	if c.Open == nil {
		return nil, false
	}

	mediaType, ok := normalize(c.MediaType)
	if !ok {
		return nil, false
	}

	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = "resume"
	}

	i.selected = &SelectedFile{
		name:      name,
		mediaType: mediaType,
		open:      c.Open,
	}

	return i.selected, true
}

// Selected returns the current selection or nil.
func (i *Intake) Selected() *SelectedFile {
	return i.selected
}

// Allowed reports whether the media type is one of AllowedMediaTypes.
func Allowed(mediaType string) bool {
	_, ok := normalize(mediaType)
	return ok
}

func normalize(mediaType string) (string, bool) {
	parsed, _, err := mime.ParseMediaType(strings.TrimSpace(mediaType))
	if err != nil {
		return "", false
	}

	for _, allowed := range AllowedMediaTypes {
		if strings.EqualFold(parsed, allowed) {
			return allowed, true
		}
	}

	return "", false
}

// FromPath builds a candidate for a local file. The media type is sniffed from the file content,
// so a renamed file is judged by what it actually is.
func FromPath(path string) (Candidate, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Candidate{}, fmt.Errorf("resume path is required")
	}

	stat, err := os.Stat(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("stat resume %q: %w", path, err)
	}
	if stat.IsDir() {
		return Candidate{}, fmt.Errorf("resume %q is a directory", path)
	}

	detected, err := mimetype.DetectFile(path)
	if err != nil {
		return Candidate{}, fmt.Errorf("detect media type of %q: %w", path, err)
	}

	return Candidate{
		Name:      filepath.Base(path),
		MediaType: detected.String(),
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// FromBytes builds an in-memory candidate with a declared media type.
func FromBytes(name, mediaType string, data []byte) Candidate {
	return Candidate{
		Name:      name,
		MediaType: mediaType,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		},
	}
}
