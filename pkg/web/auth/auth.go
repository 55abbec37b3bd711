// Copyright 2022-2024 The Vidmash Authors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; version 2.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package auth

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"

	"vidmash/pkg/log"

	"golang.org/x/crypto/bcrypt"
)

// Account contains user information.
type Account struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	Password    []byte `json:"password,omitempty"`    // Hashed password.
	RawPassword string `json:"rawPassword,omitempty"` // Only used when changing password.
	IsAdmin     bool   `json:"isAdmin"`
	Token       string `json:"-"` // CSRF token.
}

// Response is returned by ValidateAuth.
type Response struct {
	IsValid bool
	User    Account
}

// Authenticator authenticates http requests with basic auth.
type Authenticator struct {
	path      string // Path to save file.
	accounts  map[string]Account
	authCache map[string]Response

	hashCost int

	log *log.Logger
	mu  sync.Mutex
}

const defaultHashCost = 10

// NewBasicAuthenticator returns authenticator using basicAuth.
func NewBasicAuthenticator(path string, logger *log.Logger) (*Authenticator, error) {
	a := Authenticator{
		path:      path,
		accounts:  make(map[string]Account),
		authCache: make(map[string]Response),

		hashCost: defaultHashCost,
		log:      logger,
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	json.Unmarshal(file, &a.accounts) //nolint:errcheck

	a.resetTokens()

	return &a, nil
}

func (a *Authenticator) userByName(name string) (Account, bool) {
	defer a.mu.Unlock()
	a.mu.Lock()

	for _, u := range a.accounts {
		if u.Username == name {
			return u, true
		}
	}
	return Account{}, false
}

// ValidateAuth Should always take about the same amount of
// time to run, even when username or password is invalid.
func (a *Authenticator) ValidateAuth(auth string) Response {
	defer a.mu.Unlock()
	a.mu.Lock()
	if res, cacheExist := a.authCache[auth]; cacheExist {
		return res
	}
	a.mu.Unlock()

	name, pass := parseBasicAuth(auth)
	user, found := a.userByName(name)

	var r = Response{}
	if !found || name != user.Username {
		// Generate fake hash to prevent timing based attacks.
		bcrypt.GenerateFromPassword([]byte(name), a.hashCost) //nolint:errcheck
	} else if passwordsMatch(user.Password, pass) {
		r = Response{IsValid: true, User: user}
	}
	a.mu.Lock()

	a.authCache[auth] = r
	return r
}

func parseBasicAuth(auth string) (string, string) {
	const prefix = "Basic "
	if !strings.HasPrefix(auth, prefix) {
		return "", ""
	}
	decoded, err := base64.StdEncoding.DecodeString(auth[len(prefix):])
	if err != nil {
		return "", ""
	}
	name, pass, found := strings.Cut(string(decoded), ":")
	if !found {
		return "", ""
	}
	return name, pass
}

func passwordsMatch(hash []byte, plaintext string) bool {
	return bcrypt.CompareHashAndPassword(hash, []byte(plaintext)) == nil
}

func (a *Authenticator) logFailedLogin(r *http.Request) {
	username, _ := parseBasicAuth(r.Header.Get("Authorization"))

	ip := ""
	realIP := r.Header.Get("X-Real-Ip")
	if realIP != "" {
		ip += "real:" + realIP + " "
	}
	forwarded := r.Header.Get("X-Forwarded-For")
	if forwarded != "" && forwarded != realIP {
		ip += "forwarded:" + forwarded + " "
	}
	remoteAddr := r.RemoteAddr
	if remoteAddr != "" && remoteAddr != forwarded {
		ip += "addr:" + remoteAddr
	}

	a.log.Warn().Src("auth").Msgf("failed login: username: %v %v", username, ip)
}

// User blocks unauthenticated requests.
func (a *Authenticator) User(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := a.ValidateAuth(r.Header.Get("Authorization"))
		if !res.IsValid {
			a.logFailedLogin(r)
			w.Header().Set("WWW-Authenticate", `Basic realm="vidmash"`)
			http.Error(w, "Unauthorized.", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Admin blocks requests by non-admins.
func (a *Authenticator) Admin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := a.ValidateAuth(r.Header.Get("Authorization"))
		if !res.IsValid || !res.User.IsAdmin {
			a.logFailedLogin(r)
			w.Header().Set("WWW-Authenticate", `Basic realm="vidmash"`)
			http.Error(w, "Unauthorized.", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// CSRF blocks requests with invalid CSRF tokens.
func (a *Authenticator) CSRF(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := a.ValidateAuth(r.Header.Get("Authorization"))
		token := r.Header.Get("X-CSRF-TOKEN")
		if token != res.User.Token {
			http.Error(w, "invalid CSRF-token", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MyToken returns the CSRF token of the requesting user.
func (a *Authenticator) MyToken() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := a.ValidateAuth(r.Header.Get("Authorization"))
		if _, err := w.Write([]byte(res.User.Token)); err != nil {
			http.Error(w, "could not write token", http.StatusInternalServerError)
		}
	})
}

// UsersList returns a censored user list.
func (a *Authenticator) UsersList() map[string]Account {
	defer a.mu.Unlock()
	a.mu.Lock()

	list := make(map[string]Account, len(a.accounts))
	for id, user := range a.accounts {
		user.Password = nil
		user.Token = ""
		list[id] = user
	}
	return list
}

// ErrAccountMissing missing id, username or password.
var ErrAccountMissing = errors.New("missing account field")

// UserSet creates or updates an account.
func (a *Authenticator) UserSet(req Account) error {
	if req.ID == "" || req.Username == "" {
		return ErrAccountMissing
	}

	defer a.mu.Unlock()
	a.mu.Lock()

	account, exists := a.accounts[req.ID]
	if !exists && req.RawPassword == "" {
		return ErrAccountMissing
	}

	account.ID = req.ID
	account.Username = req.Username
	account.IsAdmin = req.IsAdmin

	if req.RawPassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.RawPassword), a.hashCost)
		if err != nil {
			return fmt.Errorf("could not hash password: %w", err)
		}
		account.Password = hash
	}
	if account.Token == "" {
		account.Token = genToken()
	}

	a.accounts[req.ID] = account
	a.authCache = make(map[string]Response)

	return a.saveToFile()
}

// UserDelete deletes an account.
func (a *Authenticator) UserDelete(id string) error {
	defer a.mu.Unlock()
	a.mu.Lock()

	if _, exists := a.accounts[id]; !exists {
		return errors.New("user does not exist")
	}
	delete(a.accounts, id)
	a.authCache = make(map[string]Response)

	return a.saveToFile()
}

// saveToFile saves accounts to file. Caller must hold the lock.
func (a *Authenticator) saveToFile() error {
	accounts, _ := json.MarshalIndent(a.accounts, "", "    ")
	return os.WriteFile(a.path, accounts, 0o600)
}

func (a *Authenticator) resetTokens() {
	defer a.mu.Unlock()
	a.mu.Lock()

	for id, account := range a.accounts {
		account.Token = genToken()
		a.accounts[id] = account
	}
}

func genToken() string {
	b := make([]byte, 16)
	rand.Read(b) //nolint:errcheck
	return hex.EncodeToString(b)
}
