// Package account keeps the learner accounts and the current-session pointer
// in a flat key-value medium. The whole account collection is stored as one
// JSON array under a single key.
//
// Storage failures never reach the caller: they are logged and the operation
// degrades to its empty or no-op result.
package account

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/fractionmaster/fractionmaster/internal/model"
)

const (
	keyPrefix         = "fractionmaster_"
	accountsKey       = keyPrefix + "accounts"
	currentUserKey    = keyPrefix + "current_user"
	sessionStartedKey = keyPrefix + "session_started"
)

var (
	// ErrUsernameTaken is returned by Create when the username is already registered.
	ErrUsernameTaken = errors.New("username already exists")
	// ErrEmptyCredentials is returned by Create when username or password is blank.
	ErrEmptyCredentials = errors.New("username and password are required")
)

// KV is the persistence medium. *store.Store satisfies it.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	DeletePrefix(prefix string) (int, error)
}

// Store is the account store.
type Store struct {
	kv   KV
	cost int
	now  func() time.Time
}

// New creates an account store. cost is the bcrypt cost for password hashes;
// values outside bcrypt's range fall back to bcrypt.DefaultCost.
func New(kv KV, cost int) *Store {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Store{kv: kv, cost: cost, now: time.Now}
}

// Exists reports whether an account with that username is stored.
func (s *Store) Exists(username string) bool {
	_, ok := findAccount(s.loadAll(), username)
	return ok
}

// Create registers a new account and starts a session for it.
func (s *Store) Create(username, password string, profile model.Profile, progress model.GameProgress) (model.Session, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return model.Session{}, ErrEmptyCredentials
	}
	accounts, err := s.readAll()
	if err != nil {
		// A corrupt collection is replaced rather than blocking registration.
		slog.Error("failed to load accounts", "error", err)
		accounts = nil
	}
	if _, ok := findAccount(accounts, username); ok {
		return model.Session{}, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return model.Session{}, fmt.Errorf("hash password: %w", err)
	}

	accounts = append(accounts, model.UserAccount{
		Username: username,
		Password: string(hash),
		Profile:  profile,
		Progress: progress.Clone(),
	})
	if err := s.writeAll(accounts); err != nil {
		slog.Error("failed to save account", "username", username, "error", err)
	} else {
		slog.Info("created account", "username", username)
	}
	return s.begin(username), nil
}

// Authenticate checks the credentials. On success the session pointer is set
// and a copy of the stored profile and progress is returned. On failure the
// session pointer is left untouched.
func (s *Store) Authenticate(username, password string) (model.Session, model.Snapshot, bool) {
	acc, ok := findAccount(s.loadAll(), username)
	if !ok {
		return model.Session{}, model.Snapshot{}, false
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acc.Password), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			slog.Warn("failed to compare password hash", "username", username, "error", err)
		}
		return model.Session{}, model.Snapshot{}, false
	}
	sess := s.begin(username)
	return sess, model.Snapshot{Profile: acc.Profile, Progress: acc.Progress.Clone()}, true
}

// Update overwrites the profile and progress of the session's account. It is a
// silent no-op if the session is not the active one or its record is gone.
func (s *Store) Update(sess model.Session, profile model.Profile, progress model.GameProgress) {
	if !sess.Valid() {
		return
	}
	current, ok, err := s.kv.Get(currentUserKey)
	if err != nil {
		slog.Error("failed to read session pointer", "error", err)
		return
	}
	if !ok || current != sess.Username {
		slog.Debug("session not active, skipping update", "username", sess.Username)
		return
	}

	accounts, err := s.readAll()
	if err != nil {
		slog.Error("failed to load accounts", "error", err)
		return
	}
	for i := range accounts {
		if accounts[i].Username == sess.Username {
			accounts[i].Profile = profile
			accounts[i].Progress = progress.Clone()
			if err := s.writeAll(accounts); err != nil {
				slog.Error("failed to update account", "username", sess.Username, "error", err)
			}
			return
		}
	}
	slog.Debug("no account for session, skipping update", "username", sess.Username)
}

// LoadSession returns the active account's profile and progress. Without an
// active session, or when its record is missing, it returns a nil profile and
// default progress.
func (s *Store) LoadSession() (*model.Profile, model.GameProgress) {
	username, ok, err := s.kv.Get(currentUserKey)
	if err != nil {
		slog.Error("failed to read session pointer", "error", err)
		return nil, model.DefaultProgress()
	}
	if !ok || username == "" {
		return nil, model.DefaultProgress()
	}
	acc, found := findAccount(s.loadAll(), username)
	if !found {
		slog.Debug("no account for session pointer", "username", username)
		return nil, model.DefaultProgress()
	}
	profile := acc.Profile
	return &profile, acc.Progress.Clone()
}

// Resume returns a session handle for an existing session pointer.
func (s *Store) Resume() (model.Session, bool) {
	username, ok, err := s.kv.Get(currentUserKey)
	if err != nil {
		slog.Error("failed to read session pointer", "error", err)
		return model.Session{}, false
	}
	if !ok || username == "" || !s.Exists(username) {
		return model.Session{}, false
	}
	started := s.now()
	if v, ok, err := s.kv.Get(sessionStartedKey); err == nil && ok {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			started = t
		}
	}
	return model.Session{ID: uuid.NewString(), Username: username, StartedAt: started}, true
}

// EndSession clears the session pointer. Accounts are kept.
func (s *Store) EndSession() {
	for _, k := range []string{currentUserKey, sessionStartedKey} {
		if err := s.kv.Delete(k); err != nil {
			slog.Error("failed to clear session key", "key", k, "error", err)
		}
	}
}

// PurgeAll deletes every account and the session pointer.
func (s *Store) PurgeAll() {
	n, err := s.kv.DeletePrefix(keyPrefix)
	if err != nil {
		slog.Error("failed to purge stored data", "error", err)
		return
	}
	slog.Info("purged stored data", "keys", n)
}

// Accounts returns a copy of every stored account.
func (s *Store) Accounts() []model.UserAccount {
	accounts := s.loadAll()
	for i := range accounts {
		accounts[i].Progress = accounts[i].Progress.Clone()
	}
	return accounts
}

// Import adds accounts exported from an older installation. Plaintext
// passwords are hashed; existing bcrypt hashes are kept. Usernames that are
// already registered are skipped. It returns the number of accounts added.
func (s *Store) Import(incoming []model.UserAccount) (int, error) {
	accounts, err := s.readAll()
	if err != nil {
		return 0, fmt.Errorf("load accounts: %w", err)
	}
	added := 0
	for _, acc := range incoming {
		if strings.TrimSpace(acc.Username) == "" || acc.Password == "" {
			slog.Warn("skipping account without credentials", "username", acc.Username)
			continue
		}
		if _, ok := findAccount(accounts, acc.Username); ok {
			slog.Warn("skipping existing account", "username", acc.Username)
			continue
		}
		if _, err := bcrypt.Cost([]byte(acc.Password)); err != nil {
			hash, err := bcrypt.GenerateFromPassword([]byte(acc.Password), s.cost)
			if err != nil {
				return added, fmt.Errorf("hash password for %s: %w", acc.Username, err)
			}
			acc.Password = string(hash)
		}
		acc.Progress = acc.Progress.Clone()
		accounts = append(accounts, acc)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := s.writeAll(accounts); err != nil {
		return 0, fmt.Errorf("save accounts: %w", err)
	}
	return added, nil
}

func (s *Store) begin(username string) model.Session {
	sess := model.Session{ID: uuid.NewString(), Username: username, StartedAt: s.now()}
	if err := s.kv.Set(currentUserKey, username); err != nil {
		slog.Error("failed to set session pointer", "username", username, "error", err)
	}
	if err := s.kv.Set(sessionStartedKey, sess.StartedAt.UTC().Format(time.RFC3339)); err != nil {
		slog.Error("failed to set session marker", "error", err)
	}
	return sess
}

// loadAll returns the stored accounts, or none if they cannot be read.
func (s *Store) loadAll() []model.UserAccount {
	accounts, err := s.readAll()
	if err != nil {
		slog.Error("failed to load accounts", "error", err)
		return nil
	}
	return accounts
}

func (s *Store) readAll() ([]model.UserAccount, error) {
	data, ok, err := s.kv.Get(accountsKey)
	if err != nil {
		return nil, fmt.Errorf("read accounts: %w", err)
	}
	if !ok || data == "" {
		return nil, nil
	}
	var accounts []model.UserAccount
	if err := json.Unmarshal([]byte(data), &accounts); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	return accounts, nil
}

func (s *Store) writeAll(accounts []model.UserAccount) error {
	data, err := json.Marshal(accounts)
	if err != nil {
		return fmt.Errorf("encode accounts: %w", err)
	}
	return s.kv.Set(accountsKey, string(data))
}

func findAccount(accounts []model.UserAccount, username string) (model.UserAccount, bool) {
	for _, acc := range accounts {
		if acc.Username == username {
			return acc, true
		}
	}
	return model.UserAccount{}, false
}
