package session

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Store keeps the bearer token between invocations. One opaque token under
// a fixed path, no structure or expiry checks, the backend rejects stale
// tokens on its own.
type Store interface {
	Save(token string) error
	Token() (token string, ok bool)
	Clear() error
	IsAuthenticated() bool
}

type fileStore struct {
	path string
}

func (s *fileStore) Save(token string) (err error) {
	clog := log.WithField("token-file", s.path)
	token = strings.TrimSpace(token)
	if token == "" {
		eMsg := "refusing to save empty token"
		clog.Error(eMsg)
		err = errors.New(eMsg)
		return
	}
	err = os.MkdirAll(filepath.Dir(s.path), 0700)
	if err != nil {
		eMsg := "error creating token directory"
		clog.WithError(err).Error(eMsg)
		err = errors.Wrap(err, eMsg)
		return
	}
	err = ioutil.WriteFile(s.path, []byte(token), 0600)
	if err != nil {
		eMsg := "error writing token file"
		clog.WithError(err).Error(eMsg)
		err = errors.Wrap(err, eMsg)
	}
	return
}

func (s *fileStore) Token() (token string, ok bool) {
	raw, err := ioutil.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).WithField("token-file", s.path).Error("error reading token file")
		}
		return
	}
	token = strings.TrimSpace(string(raw))
	ok = token != ""
	return
}

func (s *fileStore) Clear() (err error) {
	err = os.Remove(s.path)
	if os.IsNotExist(err) {
		err = nil
		return
	}
	if err != nil {
		eMsg := "error removing token file"
		log.WithError(err).WithField("token-file", s.path).Error(eMsg)
		err = errors.Wrap(err, eMsg)
	}
	return
}

func (s *fileStore) IsAuthenticated() bool {
	_, ok := s.Token()
	return ok
}

func NewFileStore(path string) Store {
	return &fileStore{path: path}
}

// DefaultPath is used when the configuration does not name a token file.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".shopfront_token"
	}
	return filepath.Join(home, ".shopfront", "access_token")
}
