package export

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zip"
)

// ArchiveWriter writes entries into an archive.
type ArchiveWriter interface {
	AddDir(name string) error
	AddFile(name string, content []byte, modified time.Time) error
	Close() error
}

// ArchiveFactory opens an archive writer on w.
type ArchiveFactory func(w io.Writer) ArchiveWriter

// NewZipArchive writes a deflate-compressed ZIP archive to w.
func NewZipArchive(w io.Writer) ArchiveWriter {
	return &zipArchive{zw: zip.NewWriter(w)}
}

type zipArchive struct {
	zw *zip.Writer
}

func (z *zipArchive) AddDir(name string) error {
	hdr := &zip.FileHeader{
		Name:   strings.TrimSuffix(name, "/") + "/",
		Method: zip.Store,
	}
	hdr.SetMode(fs.ModeDir | 0o755)
	_, err := z.zw.CreateHeader(hdr)
	return err
}

func (z *zipArchive) AddFile(name string, content []byte, modified time.Time) error {
	hdr := &zip.FileHeader{
		Name:   name,
		Method: zip.Deflate,
	}
	if !modified.IsZero() {
		hdr.Modified = modified
	}
	hdr.SetMode(0o644)
	w, err := z.zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}

func (z *zipArchive) Close() error {
	return z.zw.Close()
}

// Archive is a finished archive held in a temporary file. Close removes the
// file.
type Archive struct {
	Result
	Path string
}

// Open opens the archive for reading.
func (a *Archive) Open() (io.ReadCloser, error) {
	if a == nil || a.Path == "" {
		return nil, NewError(KindInternal, "archive is not available", nil)
	}
	file, err := os.Open(a.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, NewError(KindNotFound, "archive was already released", err)
		}
		return nil, err
	}
	return file, nil
}

// WriteTo copies the archive bytes to w.
func (a *Archive) WriteTo(w io.Writer) (int64, error) {
	reader, err := a.Open()
	if err != nil {
		return 0, err
	}
	defer reader.Close()
	return io.Copy(w, reader)
}

// Close removes the temporary file. It is safe to call more than once.
func (a *Archive) Close() error {
	if a == nil || a.Path == "" {
		return nil
	}
	if err := os.Remove(a.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
