package cvs

import (
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/juju/errors"
	"github.com/spf13/afero"
)

// StoredFile describes an uploaded file after it has been written.
type StoredFile struct {
	Name string
	URL  string
	Size int64
}

// FileStore keeps CV files under a single directory of an afero.Fs.
type FileStore struct {
	fs        afero.Fs
	dir       string
	urlPrefix string
	now       func() time.Time
}

func NewFileStore(fs afero.Fs, dir, urlPrefix string) (*FileStore, error) {
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Annotatef(err, "creating %s", dir)
	}
	return &FileStore{
		fs:        fs,
		dir:       dir,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
		now:       time.Now,
	}, nil
}

// Save writes r under a generated name that keeps the original extension.
func (s *FileStore) Save(originalName string, r io.Reader) (StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(filepath.Base(originalName)))
	name := fmt.Sprintf("file-%d-%d%s", s.now().UnixNano(), rand.Int64N(1e9), ext)

	f, err := s.fs.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return StoredFile{}, errors.Annotate(err, "creating cv file")
	}

	size, err := io.Copy(f, r)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = s.fs.Remove(filepath.Join(s.dir, name))
		return StoredFile{}, errors.Annotate(err, "writing cv file")
	}

	return StoredFile{Name: name, URL: path.Join(s.urlPrefix, name), Size: size}, nil
}

// Remove deletes a stored file. Names are confined to the store
// directory.
func (s *FileStore) Remove(name string) error {
	clean := filepath.Base(name)
	if clean == "." || clean == "/" || clean != name {
		return errors.NotValidf("file name %q", name)
	}
	if err := s.fs.Remove(filepath.Join(s.dir, clean)); err != nil {
		return errors.Annotatef(err, "removing %s", clean)
	}
	return nil
}

// URLPrefix is the path stored files are served under.
func (s *FileStore) URLPrefix() string {
	return s.urlPrefix
}

// Handler serves stored files, rooted at the store directory.
func (s *FileStore) Handler() http.Handler {
	return http.StripPrefix(s.urlPrefix, http.FileServer(afero.NewHttpFs(s.fs).Dir(s.dir)))
}
