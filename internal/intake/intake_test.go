package intake

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectAcceptsAllowedMediaTypes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mediaType string
		expect    string
	}{
		{name: "pdf", mediaType: MediaTypePDF, expect: MediaTypePDF},
		{name: "docx", mediaType: MediaTypeDOCX, expect: MediaTypeDOCX},
		{name: "upper case", mediaType: "Application/PDF", expect: MediaTypePDF},
		{name: "with parameters", mediaType: "application/pdf; name=resume.pdf", expect: MediaTypePDF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			in := New()
			selected, ok := in.Select(FromBytes("resume", tt.mediaType, []byte("data")))
			require.True(t, ok)
			assert.Equal(t, tt.expect, selected.MediaType())
			assert.Same(t, selected, in.Selected())
		})
	}
}

func TestSelectRejectsSilently(t *testing.T) {
	t.Parallel()

	in := New()
	first, ok := in.Select(FromBytes("resume.pdf", MediaTypePDF, []byte("%PDF-1.4")))
	require.True(t, ok)

	for _, mediaType := range []string{"text/plain", "image/png", "application/msword", "", "not a type"} {
		_, ok := in.Select(FromBytes("other", mediaType, []byte("x")))
		assert.False(t, ok, "media type %q", mediaType)
		assert.Same(t, first, in.Selected(), "selection must survive a rejected candidate")
	}

	_, ok = in.Select(Candidate{Name: "no-handle.pdf", MediaType: MediaTypePDF})
	assert.False(t, ok)
	assert.Same(t, first, in.Selected())
}

func TestSelectReplacesPriorSelection(t *testing.T) {
	t.Parallel()

	in := New()
	assert.Nil(t, in.Selected())

	_, ok := in.Select(FromBytes("a.pdf", MediaTypePDF, []byte("a")))
	require.True(t, ok)
	second, ok := in.Select(FromBytes("b.docx", MediaTypeDOCX, []byte("b")))
	require.True(t, ok)

	assert.Same(t, second, in.Selected())
	assert.Equal(t, FileInfo{Name: "b.docx", MediaType: MediaTypeDOCX}, in.Selected().Info())

	rc, err := in.Selected().Open()
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}

func TestFromPathSniffsContent(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	pdfPath := filepath.Join(dir, "resume.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("%PDF-1.4\n%âãÏÓ\n1 0 obj\n<<>>\nendobj\n"), 0o600))

	candidate, err := FromPath(pdfPath)
	require.NoError(t, err)
	assert.Equal(t, "resume.pdf", candidate.Name)
	assert.True(t, Allowed(candidate.MediaType), "got %q", candidate.MediaType)

	fake := filepath.Join(dir, "notes.pdf")
	require.NoError(t, os.WriteFile(fake, []byte("just some text, not a pdf"), 0o600))

	candidate, err = FromPath(fake)
	require.NoError(t, err)
	assert.False(t, Allowed(candidate.MediaType), "got %q", candidate.MediaType)

	_, ok := New().Select(candidate)
	assert.False(t, ok)
}

func TestFromPathErrors(t *testing.T) {
	t.Parallel()

	_, err := FromPath("   ")
	require.Error(t, err)

	_, err = FromPath(filepath.Join(t.TempDir(), "missing.pdf"))
	require.Error(t, err)

	_, err = FromPath(t.TempDir())
	require.Error(t, err)
}
