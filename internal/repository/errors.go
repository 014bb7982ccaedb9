// Package repository implements the SQL persistence layer. Each
// repository wraps *sql.DB and exposes typed operations; expected
// misses surface as sentinel errors so handlers and the rules engine
// can distinguish them from transport failures.
package repository

import "strings"

const dateLayout = "2006-01-02"

// isDuplicateKey reports whether err is a MySQL duplicate-key
// violation (error 1062). The driver does not expose a typed error
// for it, so the code is matched in the message text. Used to turn
// unique-index hits into domain errors: a duplicate email on
// registration, a taken slot on reservation writes.
func isDuplicateKey(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "1062")
}
