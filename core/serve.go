package core

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/gliderlabs/ssh"
	"github.com/spf13/afero"
	gossh "golang.org/x/crypto/ssh"

	"github.com/95jonpet/pjsh/core/config"
	"github.com/95jonpet/pjsh/core/state"
)

// Server exposes the shell to remote users over SSH. Every session
// gets its own scope stack and host registry.
type Server struct {
	fs        afero.Fs
	cfg       *config.Configuration
	sshServer *ssh.Server
}

// NewServer creates an SSH server for the given configuration. The
// host key is read from the configuration directory and generated
// there when missing.
func NewServer(fs afero.Fs, cfg *config.Configuration, configDir string) (*Server, error) {
	server := &Server{
		fs:  fs,
		cfg: cfg,
	}

	signer, err := hostKey(fs, filepath.Join(configDir, cfg.SSH.HostKey))
	if err != nil {
		return nil, err
	}

	server.sshServer = &ssh.Server{
		Addr: fmt.Sprintf(":%d", cfg.SSH.Port),
		Handler: func(s ssh.Session) {
			server.handleSession(s)
		},
	}
	server.sshServer.AddHostKey(signer)

	return server, nil
}

func (s *Server) handleSession(session ssh.Session) {
	s.writeBanner(session)

	shell, err := NewShell(s.fs, s.cfg, session, session, session.Stderr())
	if err != nil {
		fmt.Fprintf(session.Stderr(), "pjsh: %v\n", err)
		_ = session.Exit(1)
		return
	}
	defer shell.Close()

	shell.SetEnviron(session.Environ())
	shell.SetDir("/")
	shell.Context().SetVar("USER", state.Word(session.User()))
	_ = shell.Context().Export("USER")

	ptyInfo, winch, isPty := session.Pty()
	width := ptyInfo.Window.Width
	go func() {
		for window := range winch {
			width = window.Width
		}
	}()
	shell.IsTerminal = func() bool { return isPty }
	shell.Width = func() int { return width }

	var code int
	if raw := session.RawCommand(); raw != "" {
		code, err = shell.RunCommand(raw)
	} else {
		code, err = shell.Interactive()
	}
	if err != nil {
		fmt.Fprintf(session.Stderr(), "pjsh: %v\n", err)
	}
	_ = session.Exit(code)
}

// writeBanner prints the configured banner at the start of a session.
func (s *Server) writeBanner(w io.Writer) {
	if s.cfg.SSH.Banner != "" {
		fmt.Fprintln(w, s.cfg.SSH.Banner)
	}
}

// ListenAndServe blocks serving connections until Shutdown is called.
func (s *Server) ListenAndServe() error {
	log.Printf("Serving SSH on %s", s.sshServer.Addr)
	return s.sshServer.ListenAndServe()
}

// Shutdown stops accepting connections and waits for active sessions
// within the context's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.sshServer.Shutdown(ctx)
}

// hostKey loads the host key at path, generating and persisting a new
// one when none exists.
func hostKey(fs afero.Fs, path string) (gossh.Signer, error) {
	pemBytes, err := afero.ReadFile(fs, path)
	if os.IsNotExist(err) {
		pemBytes, err = generateHostKey(fs, path)
	}
	if err != nil {
		return nil, err
	}
	return gossh.ParsePrivateKey(pemBytes)
}

func generateHostKey(fs afero.Fs, path string) ([]byte, error) {
	_, key, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, err
	}
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, err
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})
	if err := afero.WriteFile(fs, path, pemBytes, 0o600); err != nil {
		return nil, err
	}
	return pemBytes, nil
}
