package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// FallbackLocale is used when a localized text has no entry for the
// requested locale.
const FallbackLocale = "en"

// LocaleText holds per-locale variants of a text field, keyed by
// locale code ("en", "es"). It maps to a nullable JSON column: a
// nil map is stored as SQL NULL and a NULL column scans back to a
// nil map, so "no notes" round-trips without inventing an empty
// object.
type LocaleText map[string]string

// Value implements driver.Valuer. Nil maps become SQL NULL.
func (t LocaleText) Value() (driver.Value, error) {
	if t == nil {
		return nil, nil
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, fmt.Errorf("marshal locale text: %w", err)
	}
	return b, nil
}

// Scan implements sql.Scanner for JSON columns read back from
// MySQL, which may arrive as []byte or string depending on driver
// settings.
func (t *LocaleText) Scan(src any) error {
	if src == nil {
		*t = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan locale text: unsupported type %T", src)
	}
	if len(raw) == 0 {
		*t = nil
		return nil
	}
	m := make(map[string]string)
	if err := json.Unmarshal(raw, &m); err != nil {
		return fmt.Errorf("scan locale text: %w", err)
	}
	*t = m
	return nil
}

// Resolve returns the variant for locale, falling back to
// FallbackLocale and then to any present variant. The second return
// is false when the map is empty or nil.
func (t LocaleText) Resolve(locale string) (string, bool) {
	if len(t) == 0 {
		return "", false
	}
	if s, ok := t[locale]; ok {
		return s, true
	}
	if s, ok := t[FallbackLocale]; ok {
		return s, true
	}
	for _, s := range t {
		return s, true
	}
	return "", false
}
