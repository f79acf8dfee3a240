package postgres

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	pq "github.com/lib/pq"

	"github.com/108city/habit-tracker/internal/constants"
)

var (
	ErrInvalidConnectionString = errors.New("invalid PostgreSQL connection string")
	ErrEmbeddedCredentials     = errors.New("connection string must not contain a password")
)

// IsURL reports whether connStr uses the postgres:// or postgresql:// scheme.
func IsURL(connStr string) bool {
	return strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://")
}

// ValidateConnString checks that connStr is a parseable URI or key=value DSN
// and that it carries no password. Credentials belong in .pgpass,
// PGPASSWORD or the OS keyring.
func ValidateConnString(connStr string) error {
	if strings.TrimSpace(connStr) == "" {
		return fmt.Errorf("%w: connection string cannot be empty", ErrInvalidConnectionString)
	}

	if _, err := pq.NewConnector(connStr); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConnectionString, err)
	}

	if IsURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return fmt.Errorf("%w: failed to parse connection URL: %v", ErrInvalidConnectionString, err)
		}
		if _, isSet := u.User.Password(); isSet {
			return ErrEmbeddedCredentials
		}
		if u.Host == "" && u.User == nil && (u.Path == "" || u.Path == "/") {
			return fmt.Errorf("%w: connection URL is incomplete", ErrInvalidConnectionString)
		}
		return nil
	}

	if hasParam(connStr, "password") {
		return ErrEmbeddedCredentials
	}
	return nil
}

// hasParam reports whether connStr sets key (case-insensitive), in either
// the URL query or the DSN key=value form.
func hasParam(connStr, key string) bool {
	if IsURL(connStr) {
		if u, err := url.Parse(connStr); err == nil {
			for k := range u.Query() {
				if strings.EqualFold(k, key) {
					return true
				}
			}
		}
		return false
	}

	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], key) {
			return true
		}
	}
	return false
}

// withSearchPath pins the session to the application schema unless the
// caller already chose one.
func withSearchPath(connStr string) (string, error) {
	if hasParam(connStr, "search_path") {
		return connStr, nil
	}
	if IsURL(connStr) {
		u, err := url.Parse(connStr)
		if err != nil {
			return connStr, err
		}
		q := u.Query()
		q.Set("search_path", constants.AppName)
		u.RawQuery = q.Encode()
		return u.String(), nil
	}
	return strings.TrimSpace(connStr) + " search_path=" + constants.AppName, nil
}
