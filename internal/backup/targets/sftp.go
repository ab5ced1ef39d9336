package targets

import (
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"path"
	"sort"
	"strconv"
	"time"

	"github.com/pkg/sftp"
	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/ayushbarthwal/eatsafe/internal/backup"
	"github.com/ayushbarthwal/eatsafe/internal/conf"
	"github.com/ayushbarthwal/eatsafe/internal/errors"
	"github.com/ayushbarthwal/eatsafe/internal/logger"
)

const (
	defaultSFTPPort    = 22
	defaultSFTPTimeout = 30 * time.Second
)

// sftpDialer opens an SFTP session. The closer releases the transport
// underneath the client and may be nil.
type sftpDialer func(ctx context.Context) (*sftp.Client, io.Closer, error)

// SFTPTarget stores archives on a remote host over SFTP.
type SFTPTarget struct {
	host     string
	port     int
	username string
	password string
	keyFile  string
	known    string
	basePath string
	timeout  time.Duration
	dial     sftpDialer
	log      logger.Logger
}

// NewSFTPTarget creates an SFTP target from settings. Without a known hosts
// file the server key is not verified and a warning is logged.
func NewSFTPTarget(cfg *conf.SFTPBackupSettings, log logger.Logger) (*SFTPTarget, error) {
	if cfg.Host == "" {
		return nil, configError("sftp host is required")
	}
	if cfg.Username == "" {
		return nil, configError("sftp username is required")
	}
	if cfg.Password == "" && cfg.KeyFile == "" {
		return nil, configError("sftp requires a password or a key file")
	}
	if log == nil {
		log = logger.Global().Module(component)
	}

	t := &SFTPTarget{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
		keyFile:  cfg.KeyFile,
		known:    cfg.KnownHostsFile,
		basePath: cfg.Path,
		timeout:  cfg.Timeout,
		log:      log,
	}
	if t.port == 0 {
		t.port = defaultSFTPPort
	}
	if t.timeout <= 0 {
		t.timeout = defaultSFTPTimeout
	}
	if t.basePath == "" {
		t.basePath = "backups"
	}
	if t.known == "" {
		log.Warn("sftp host key verification disabled, set known_hosts_file to enable it",
			logger.String("host", t.host))
	}
	t.dial = t.connect
	return t, nil
}

// Name returns the name of this target.
func (t *SFTPTarget) Name() string { return "sftp" }

func (t *SFTPTarget) clientConfig() (*ssh.ClientConfig, error) {
	cfg := &ssh.ClientConfig{
		User:    t.username,
		Timeout: t.timeout,
	}

	if t.known != "" {
		cb, err := knownhosts.New(t.known)
		if err != nil {
			return nil, fmt.Errorf("sftp: failed to load known hosts: %w", err)
		}
		cfg.HostKeyCallback = cb
	} else {
		cfg.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // opt-in via known_hosts_file
	}

	switch {
	case t.keyFile != "":
		key, err := os.ReadFile(t.keyFile)
		if err != nil {
			return nil, fmt.Errorf("sftp: failed to read private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, fmt.Errorf("sftp: failed to parse private key: %w", err)
		}
		cfg.Auth = []ssh.AuthMethod{ssh.PublicKeys(signer)}
	default:
		cfg.Auth = []ssh.AuthMethod{ssh.Password(t.password)}
	}
	return cfg, nil
}

func (t *SFTPTarget) connect(ctx context.Context) (*sftp.Client, io.Closer, error) {
	cfg, err := t.clientConfig()
	if err != nil {
		return nil, nil, err
	}

	addr := net.JoinHostPort(t.host, strconv.Itoa(t.port))
	dialer := net.Dialer{Timeout: t.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("sftp: failed to connect: %w", err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, cfg)
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("sftp: ssh handshake failed: %w", err)
	}
	sshClient := ssh.NewClient(sshConn, chans, reqs)

	client, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, nil, fmt.Errorf("sftp: failed to create client: %w", err)
	}
	return client, sshClient, nil
}

// session runs fn with a fresh SFTP client.
func (t *SFTPTarget) session(ctx context.Context, fn func(*sftp.Client) error) error {
	client, closer, err := t.dial(ctx)
	if err != nil {
		return errors.New(err).
			Component(component).
			Category(errors.CategoryNetwork).
			Context("host", t.host).
			Build()
	}
	defer func() {
		if err := client.Close(); err != nil {
			t.log.Debug("sftp client close failed", logger.Error(err))
		}
		if closer != nil {
			_ = closer.Close()
		}
	}()
	return fn(client)
}

// Store uploads the archive to a temporary name and renames it into place.
func (t *SFTPTarget) Store(ctx context.Context, archivePath string, _ *backup.Metadata) (string, error) {
	name := path.Base(archivePath)
	if !backup.IsArchiveName(name) {
		return "", invalidName(name)
	}
	remote := path.Join(t.basePath, name)

	err := t.session(ctx, func(c *sftp.Client) error {
		if err := c.MkdirAll(t.basePath); err != nil {
			return fmt.Errorf("sftp: failed to create %s: %w", t.basePath, err)
		}

		src, err := os.Open(archivePath)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer src.Close()

		tmp := path.Join(t.basePath, ".tmp-"+name)
		dst, err := c.Create(tmp)
		if err != nil {
			return fmt.Errorf("sftp: failed to create %s: %w", tmp, err)
		}
		if _, err := io.Copy(dst, &ctxReader{ctx: ctx, r: src}); err != nil {
			_ = dst.Close()
			_ = c.Remove(tmp)
			return fmt.Errorf("sftp: upload failed: %w", err)
		}
		if err := dst.Close(); err != nil {
			_ = c.Remove(tmp)
			return fmt.Errorf("sftp: failed to close %s: %w", tmp, err)
		}
		if err := c.Rename(tmp, remote); err != nil {
			_ = c.Remove(tmp)
			return fmt.Errorf("sftp: failed to rename %s: %w", tmp, err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("sftp://%s%s", net.JoinHostPort(t.host, strconv.Itoa(t.port)), path.Join("/", remote)), nil
}

// List returns the archives in the remote directory, oldest first.
func (t *SFTPTarget) List(ctx context.Context) ([]backup.ArchiveInfo, error) {
	var out []backup.ArchiveInfo
	err := t.session(ctx, func(c *sftp.Client) error {
		entries, err := c.ReadDir(t.basePath)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("sftp: failed to list %s: %w", t.basePath, err)
		}
		for _, e := range entries {
			if e.IsDir() || !backup.IsArchiveName(e.Name()) {
				continue
			}
			out = append(out, backup.ArchiveInfo{Name: e.Name(), Size: e.Size(), ModTime: e.ModTime()})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

// Delete removes one archive.
func (t *SFTPTarget) Delete(ctx context.Context, name string) error {
	if !backup.IsArchiveName(name) {
		return invalidName(name)
	}
	return t.session(ctx, func(c *sftp.Client) error {
		if err := c.Remove(path.Join(t.basePath, name)); err != nil {
			return fmt.Errorf("sftp: failed to delete %s: %w", name, err)
		}
		return nil
	})
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
