package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobhunt-app/jobhunt/internal/coerce"
)

// KeyPrefix marks every issued API key.
const KeyPrefix = "jh_"

// prefixLen is how many characters of the token (including KeyPrefix) are
// stored in clear for lookup. The rest is only ever stored as a bcrypt hash.
const prefixLen = len(KeyPrefix) + 8

// ErrInvalidAPIKey is returned when a presented token matches no stored key.
var ErrInvalidAPIKey = errors.New("invalid API key")

// APIKey is an issued credential. The token itself is shown once at creation
// and never stored.
type APIKey struct {
	ID        int64
	Name      string
	Prefix    string
	Scopes    []string
	CreatedAt time.Time
}

// Allows reports whether the key grants a scope. A literal "*" grants
// everything.
func (k *APIKey) Allows(scope string) bool {
	for _, s := range k.Scopes {
		if s == "*" || s == scope {
			return true
		}
	}
	return false
}

// CreateAPIKey issues a new key with the given name and scopes and returns
// the plaintext token alongside the stored record.
func (s *Store) CreateAPIKey(ctx context.Context, name string, scopes []string) (string, *APIKey, error) {
	secret := strings.ReplaceAll(uuid.NewString(), "-", "") + strings.ReplaceAll(uuid.NewString(), "-", "")
	token := KeyPrefix + secret
	prefix := token[:prefixLen]

	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		return "", nil, err
	}

	now := time.Now().UTC()
	var id int64
	query := "INSERT INTO api_key (name, prefix, key_hash, scopes, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id"
	err = s.db.QueryRowContext(ctx, query,
		name, prefix, string(hash), strings.Join(scopes, ","), now.Format(coerce.DateTimeLayout),
	).Scan(&id)
	if err != nil {
		return "", nil, convertDBError(err)
	}

	return token, &APIKey{ID: id, Name: name, Prefix: prefix, Scopes: scopes, CreatedAt: now}, nil
}

// AuthenticateAPIKey resolves a presented token to its stored key. Lookup
// goes through the clear prefix; the full token is then verified against the
// bcrypt hash.
func (s *Store) AuthenticateAPIKey(ctx context.Context, token string) (*APIKey, error) {
	if len(token) < prefixLen || !strings.HasPrefix(token, KeyPrefix) {
		return nil, ErrInvalidAPIKey
	}

	query := "SELECT id, name, prefix, key_hash, scopes, created_at FROM api_key WHERE prefix = $1"
	rows, err := s.db.QueryContext(ctx, query, token[:prefixLen])
	if err != nil {
		return nil, convertDBError(err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key       APIKey
			hash      string
			scopes    string
			createdAt string
		)
		if err := rows.Scan(&key.ID, &key.Name, &key.Prefix, &hash, &scopes, &createdAt); err != nil {
			return nil, err
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) != nil {
			continue
		}
		if scopes != "" {
			key.Scopes = strings.Split(scopes, ",")
		}
		if t, err := time.Parse(coerce.DateTimeLayout, createdAt); err == nil {
			key.CreatedAt = t
		}
		return &key, nil
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return nil, ErrInvalidAPIKey
}
