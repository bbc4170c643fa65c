package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/textproto"
	"path"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jlaffaye/ftp"

	"github.com/btu-burial/backend/internal/config"
)

const (
	ftpDialTimeout  = 30 * time.Second
	ftpPutAttempts  = 3
	ftpRetryBackoff = 2 * time.Second
)

// FTPStore stores news images on the legacy shared-hosting FTP server. FTP
// sessions are not safe for concurrent use, so every operation dials its own
// short-lived connection with an explicit timeout.
type FTPStore struct {
	addr      string
	user      string
	password  string
	uploadDir string

	// dirReady memoizes a successful directory bootstrap. It only ever goes
	// false -> true; a failed bootstrap leaves it false so the next request
	// retries.
	dirReady atomic.Bool
}

// NewFTPStore creates an FTPStore. The host may omit the port; 21 is assumed.
func NewFTPStore(cfg *config.Config) *FTPStore {
	addr := cfg.FTPHost
	if !strings.Contains(addr, ":") {
		addr += ":21"
	}
	return &FTPStore{
		addr:      addr,
		user:      cfg.FTPUser,
		password:  cfg.FTPPassword,
		uploadDir: strings.Trim(cfg.FTPUploadDir, "/"),
	}
}

func (s *FTPStore) connect(ctx context.Context) (*ftp.ServerConn, error) {
	conn, err := ftp.Dial(s.addr, ftp.DialWithTimeout(ftpDialTimeout), ftp.DialWithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrUnavailable, s.addr, err)
	}
	if err := conn.Login(s.user, s.password); err != nil {
		_ = conn.Quit()
		return nil, fmt.Errorf("%w: login: %v", ErrUnavailable, err)
	}
	return conn, nil
}

// enterUploadDir walks into the upload directory, creating missing components
// one by one. MakeDir errors are ignored because "already exists" is fine; the
// ChangeDir that follows is what actually has to succeed.
func (s *FTPStore) enterUploadDir(conn *ftp.ServerConn) error {
	for _, component := range strings.Split(s.uploadDir, "/") {
		if component == "" {
			continue
		}
		if !s.dirReady.Load() {
			_ = conn.MakeDir(component)
		}
		if err := conn.ChangeDir(component); err != nil {
			return fmt.Errorf("enter directory %q: %w", component, err)
		}
	}
	s.dirReady.Store(true)
	return nil
}

// EnsureContainer bootstraps the nested upload directory path.
func (s *FTPStore) EnsureContainer(ctx context.Context) error {
	if s.dirReady.Load() {
		return nil
	}
	conn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Quit() //nolint:errcheck
	return s.enterUploadDir(conn)
}

// Put transfers the content, retrying the store step a bounded number of
// times, then verifies the file actually landed by re-listing the directory.
func (s *FTPStore) Put(ctx context.Context, name string, r io.Reader, size int64, contentType string) (string, error) {
	// Buffer the payload so each retry can replay it. Uploads are capped at
	// a few megabytes upstream.
	payload, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload payload: %w", err)
	}

	conn, err := s.connect(ctx)
	if err != nil {
		return "", err
	}
	defer conn.Quit() //nolint:errcheck

	if err := s.enterUploadDir(conn); err != nil {
		return "", err
	}

	var lastErr error
	for attempt := 1; attempt <= ftpPutAttempts; attempt++ {
		lastErr = conn.Stor(name, bytes.NewReader(payload))
		if lastErr == nil {
			break
		}
		log.Printf("storage: ftp store attempt %d/%d for %s failed: %v", attempt, ftpPutAttempts, name, lastErr)
		if attempt < ftpPutAttempts {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(ftpRetryBackoff):
			}
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("%w: %v", ErrTransferFailed, lastErr)
	}

	entries, err := conn.NameList(".")
	if err != nil {
		return "", fmt.Errorf("verify upload of %s: %w", name, err)
	}
	for _, entry := range entries {
		if path.Base(entry) == name {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: %s missing after transfer", ErrTransferFailed, name)
}

// Get streams a stored file back. The file host keeps no content-type
// metadata, so the type is derived from the filename extension before any
// bytes are transferred; unknown or non-image extensions are rejected.
func (s *FTPStore) Get(ctx context.Context, token string) (string, io.ReadCloser, error) {
	contentType := contentTypeByExtension(token)
	if contentType == "" {
		return "", nil, ErrNotAnImage
	}

	conn, err := s.connect(ctx)
	if err != nil {
		return "", nil, err
	}

	if err := s.enterUploadDir(conn); err != nil {
		_ = conn.Quit()
		return "", nil, err
	}

	resp, err := conn.Retr(token)
	if err != nil {
		_ = conn.Quit()
		if isFTPFileUnavailable(err) {
			return "", nil, ErrNotFound
		}
		return "", nil, fmt.Errorf("retrieve %s: %w", token, err)
	}

	return contentType, &ftpResponseCloser{resp: resp, conn: conn}, nil
}

// Delete removes the file; a missing file counts as already deleted.
func (s *FTPStore) Delete(ctx context.Context, token string) error {
	conn, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer conn.Quit() //nolint:errcheck

	if err := s.enterUploadDir(conn); err != nil {
		return err
	}
	if err := conn.Delete(token); err != nil && !isFTPFileUnavailable(err) {
		return fmt.Errorf("delete %s: %w", token, err)
	}
	return nil
}

// ftpResponseCloser ties the data stream and its control connection together
// so closing the stream also ends the session.
type ftpResponseCloser struct {
	resp *ftp.Response
	conn *ftp.ServerConn
}

func (c *ftpResponseCloser) Read(p []byte) (int, error) { return c.resp.Read(p) }

func (c *ftpResponseCloser) Close() error {
	err := c.resp.Close()
	if qerr := c.conn.Quit(); err == nil {
		err = qerr
	}
	return err
}

func isFTPFileUnavailable(err error) bool {
	var proto *textproto.Error
	return errors.As(err, &proto) && proto.Code == ftp.StatusFileUnavailable
}

func contentTypeByExtension(name string) string {
	ct := mime.TypeByExtension(strings.ToLower(path.Ext(name)))
	if !strings.HasPrefix(ct, "image/") {
		return ""
	}
	return ct
}
