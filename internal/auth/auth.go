package auth

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"sync"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
)

// User is the externally visible part of an account.
type User struct {
	ID    string `yaml:"id" json:"id"`
	Email string `yaml:"email" json:"email"`
	Role  string `yaml:"role" json:"role"`
}

type userEntry struct {
	User         `yaml:",inline"`
	PasswordHash string `yaml:"password_hash"`
}

type userFile struct {
	Users []userEntry `yaml:"users"`
}

var (
	ErrBadCredentials = errors.New("invalid email or password")
	ErrExists         = errors.New("user already exists")
	ErrNotLoggedIn    = errors.New("no active session")
)

// Listener is notified whenever the current-user state changes. A nil user
// means logged out.
type Listener func(*User)

// Manager holds process-wide authentication state: the registered users and
// the current session. It is initialized explicitly (Init) and torn down
// explicitly (Close) rather than looked up ambiently; consumers observe
// state changes through Subscribe. The search aggregator never depends on
// this state.
type Manager struct {
	mu        sync.RWMutex
	path      string
	users     map[string]userEntry // keyed by email
	current   *User
	listeners map[int]Listener
	nextSub   int
	closed    bool
}

// Init loads the user file at path (created on first Register if missing)
// and returns a ready manager.
func Init(path string) (*Manager, error) {
	m := &Manager{
		path:      path,
		users:     make(map[string]userEntry),
		listeners: make(map[int]Listener),
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read user file: %w", err)
	}

	var f userFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse user file: %w", err)
	}
	for _, u := range f.Users {
		m.users[u.Email] = u
	}
	return m, nil
}

// Close logs out and drops all subscriptions.
func (m *Manager) Close() {
	m.mu.Lock()
	m.current = nil
	m.listeners = map[int]Listener{}
	m.closed = true
	m.mu.Unlock()
}

// Register creates an account with a bcrypt-hashed password and persists the
// user file.
func (m *Manager) Register(id, email, password string) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, dup := m.users[email]; dup {
		return nil, ErrExists
	}
	entry := userEntry{
		User:         User{ID: id, Email: email, Role: "reader"},
		PasswordHash: string(hash),
	}
	m.users[email] = entry
	if err := m.persistLocked(); err != nil {
		delete(m.users, email)
		return nil, err
	}
	u := entry.User
	return &u, nil
}

// Login verifies credentials and makes the user current, notifying listeners.
func (m *Manager) Login(email, password string) (*User, error) {
	m.mu.Lock()
	entry, ok := m.users[email]
	m.mu.Unlock()
	if !ok {
		return nil, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(entry.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}

	u := entry.User
	m.setCurrent(&u)
	return &u, nil
}

// Logout clears the current session, notifying listeners.
func (m *Manager) Logout() error {
	m.mu.RLock()
	active := m.current != nil
	m.mu.RUnlock()
	if !active {
		return ErrNotLoggedIn
	}
	m.setCurrent(nil)
	return nil
}

// Current returns the logged-in user, or nil.
func (m *Manager) Current() *User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil {
		return nil
	}
	u := *m.current
	return &u
}

// Subscribe registers a listener for current-user changes and returns an
// unsubscribe func.
func (m *Manager) Subscribe(l Listener) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.listeners[id] = l
	return func() {
		m.mu.Lock()
		delete(m.listeners, id)
		m.mu.Unlock()
	}
}

func (m *Manager) setCurrent(u *User) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.current = u
	ls := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		ls = append(ls, l)
	}
	m.mu.Unlock()

	// Notify outside the lock so a listener may call back into the manager.
	for _, l := range ls {
		l(u)
	}
}

func (m *Manager) persistLocked() error {
	f := userFile{Users: make([]userEntry, 0, len(m.users))}
	for _, u := range m.users {
		f.Users = append(f.Users, u)
	}
	// Stable file contents: map iteration order must not leak into the file.
	sort.Slice(f.Users, func(i, j int) bool { return f.Users[i].Email < f.Users[j].Email })
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal user file: %w", err)
	}
	if err := os.WriteFile(m.path, data, 0o600); err != nil {
		return fmt.Errorf("write user file: %w", err)
	}
	return nil
}
