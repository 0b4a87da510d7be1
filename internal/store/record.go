package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"reflect"

	"github.com/go-playground/validator/v10"

	"github.com/abhisek/lexiz/internal/logger"
)

// RecordVersion is the schema version written into every envelope.
const RecordVersion = 1

var validate = validator.New()

// Envelope is embedded by every persisted document so the schema version
// travels with the data.
type Envelope struct {
	Version int `json:"version" validate:"required,eq=1"`
}

// NewEnvelope returns an Envelope stamped with the current version.
func NewEnvelope() Envelope {
	return Envelope{Version: RecordVersion}
}

// LoadJSON reads key from kv, decodes it into v and validates it.
// It returns (false, nil) when the key is absent and a *CorruptRecordError
// when the stored document is malformed or fails validation.
func LoadJSON(ctx context.Context, kv KV, key string, v any) (bool, error) {
	raw, err := kv.Get(ctx, key)
	if err != nil {
		return false, err
	}
	if raw == nil {
		return false, nil
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return false, &CorruptRecordError{Key: key, Err: fmt.Errorf("decode: %w", err)}
	}
	if err := validate.Struct(v); err != nil {
		return false, &CorruptRecordError{Key: key, Err: fmt.Errorf("validate: %w", err)}
	}
	return true, nil
}

// SaveJSON validates v and writes it to kv under key.
func SaveJSON(ctx context.Context, kv KV, key string, v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("validate %q: %w", key, err)
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	return kv.Set(ctx, key, raw)
}

// BackupKey is where a document is copied before any part of it is
// discarded on load.
func BackupKey(key string) string {
	return key + ".bak"
}

// LoadRecoverable is LoadJSON for callers that can start over: a corrupt
// document is copied to BackupKey(key) and reported through l, v is
// reset to its zero value and the key is treated as absent.
func LoadRecoverable(ctx context.Context, kv KV, key string, v any, l *slog.Logger) (bool, error) {
	found, err := LoadJSON(ctx, kv, key, v)
	if errors.Is(err, ErrCorrupt) {
		if err := backup(ctx, kv, key, nil); err != nil {
			return false, err
		}
		logger.OrDefault(l).Warn("discarding corrupt record", "key", key, "backup", BackupKey(key), "error", err)
		reflect.ValueOf(v).Elem().SetZero()
		return false, nil
	}
	return found, err
}

// LoadItems reads a collection document whose items are stored under
// field. Items that fail to decode or validate are dropped one by one and
// the rest are returned. Whenever anything is dropped the stored document
// is first copied to BackupKey(key), so a later save never loses it.
func LoadItems[T any](ctx context.Context, kv KV, key, field string, l *slog.Logger) ([]T, error) {
	raw, err := kv.Get(ctx, key)
	if err != nil || raw == nil {
		return nil, err
	}
	l = logger.OrDefault(l)

	discard := func(cause error) ([]T, error) {
		if err := backup(ctx, kv, key, raw); err != nil {
			return nil, err
		}
		l.Warn("discarding corrupt record", "key", key, "backup", BackupKey(key), "error", cause)
		return nil, nil
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return discard(fmt.Errorf("decode: %w", err))
	}
	if err := validate.Struct(env); err != nil {
		return discard(fmt.Errorf("validate: %w", err))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return discard(fmt.Errorf("decode: %w", err))
	}
	var elems []json.RawMessage
	if f, ok := fields[field]; ok {
		if err := json.Unmarshal(f, &elems); err != nil {
			return discard(fmt.Errorf("decode %s: %w", field, err))
		}
	}

	items := make([]T, 0, len(elems))
	dropped := 0
	for i, elem := range elems {
		var item T
		err := json.Unmarshal(elem, &item)
		if err == nil {
			err = validate.Struct(item)
		}
		if err != nil {
			l.Warn("discarding corrupt item", "key", key, "index", i, "error", err)
			dropped++
			continue
		}
		items = append(items, item)
	}

	if dropped > 0 {
		if err := backup(ctx, kv, key, raw); err != nil {
			return nil, err
		}
		l.Warn("kept valid items of corrupt record", "key", key, "kept", len(items), "dropped", dropped, "backup", BackupKey(key))
	}
	return items, nil
}

// backup copies raw, or the current value of key when raw is nil, to
// BackupKey(key).
func backup(ctx context.Context, kv KV, key string, raw []byte) error {
	if raw == nil {
		var err error
		if raw, err = kv.Get(ctx, key); err != nil || raw == nil {
			return err
		}
	}
	if err := kv.Set(ctx, BackupKey(key), raw); err != nil {
		return fmt.Errorf("back up %q: %w", key, err)
	}
	return nil
}
