package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/oggyb/muzz-dating/internal/client"
	"github.com/oggyb/muzz-dating/internal/logger"
	"github.com/oggyb/muzz-dating/internal/model"
)

const callTimeout = 10 * time.Second

// sessionFile is the signed-in identity kept between invocations.
type sessionFile struct {
	UserID      string    `json:"user_id"`
	Email       string    `json:"email"`
	AccessToken string    `json:"access_token"`
	SavedAt     time.Time `json:"saved_at"`
}

func configDir() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, "datingctl")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "datingctl")
}

func defaultSessionPath() string { return filepath.Join(configDir(), "session.json") }

func saveSession(identity model.Identity, token string) error {
	path := viper.GetString("session_file")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(sessionFile{
		UserID:      identity.UserID,
		Email:       identity.Email,
		AccessToken: token,
		SavedAt:     time.Now().UTC(),
	}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o600)
}

func loadSession() (sessionFile, error) {
	var sf sessionFile
	b, err := os.ReadFile(viper.GetString("session_file"))
	if errors.Is(err, os.ErrNotExist) {
		return sf, errors.New("not signed in (run datingctl signin)")
	}
	if err != nil {
		return sf, err
	}
	if err := json.Unmarshal(b, &sf); err != nil {
		return sf, err
	}
	if sf.AccessToken == "" {
		return sf, errors.New("not signed in (run datingctl signin)")
	}
	return sf, nil
}

func clearSession() error {
	err := os.Remove(viper.GetString("session_file"))
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// connect opens a session; when signedIn is set the stored token is resumed.
func connect(signedIn bool) (*client.Session, func(), error) {
	conn, err := grpc.NewClient(viper.GetString("server"),
		grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, err
	}
	log := logger.New(logger.Config{
		Level:  viper.GetString("log_level"),
		Format: logger.FormatText,
		Output: os.Stderr,
	})
	s := client.NewSession(conn, client.WithLogger(log))
	closeAll := func() {
		s.Close()
		conn.Close()
	}

	if signedIn {
		sf, err := loadSession()
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		s.Resume(model.Identity{UserID: sf.UserID, Email: sf.Email}, sf.AccessToken)
	}
	return s, closeAll, nil
}

func callCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, callTimeout)
}
