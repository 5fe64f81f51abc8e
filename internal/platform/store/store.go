package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned by Get when the key is absent.
	ErrNotFound = errors.New("store: key not found")
	// ErrSkip returned from an UpdateFunc leaves the stored value untouched.
	ErrSkip = errors.New("store: skip update")
)

// UpdateFunc receives the current value (nil when absent) and returns the value to store.
type UpdateFunc func(current []byte) ([]byte, error)

// Store is the key/value contract every backend implements. Values are opaque JSON documents.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// ListKeys returns every key starting with prefix in lexical order.
	ListKeys(ctx context.Context, prefix string) ([]string, error)
	// Update applies fn atomically with respect to other Update calls on the same key.
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Ping(ctx context.Context) error
	Close() error
}

const (
	TenantPrefix    = "tenant:"
	UserPrefix      = "user:"
	ConfigPrefix    = "config:"
	AnalyticsPrefix = "analytics:"
	MagicLinkPrefix = "magiclink:"
)

func TenantKey(slug string) string { return TenantPrefix + slug }
func UserKey(email string) string { return UserPrefix + strings.ToLower(email) }
func ConfigKey(tenantID string) string { return ConfigPrefix + tenantID }
func AnalyticsKey(tenantID string) string { return AnalyticsPrefix + tenantID }
func MagicLinkKey(digest string) string { return MagicLinkPrefix + digest }

// GetJSON decodes the value at key into out. It returns false when the key is absent.
func GetJSON(ctx context.Context, s Store, key string, out interface{}) (bool, error) {
	data, err := s.Get(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, data)
}

// UpdateJSON is Update for typed records. fn sees a zero T and exists=false when the key is absent.
func UpdateJSON[T any](ctx context.Context, s Store, key string, fn func(v *T, exists bool) error) error {
	return s.Update(ctx, key, func(current []byte) ([]byte, error) {
		var v T
		exists := current != nil
		if exists {
			if err := json.Unmarshal(current, &v); err != nil {
				return nil, fmt.Errorf("decode %s: %w", key, err)
			}
		}
		if err := fn(&v, exists); err != nil {
			return nil, err
		}
		return json.Marshal(&v)
	})
}
