package sqlite

import (
	"database/sql"

	"oot/internal/domain"
)

// stateTx wraps one Save
type stateTx struct {
	tx *sql.Tx
}

// clear removes every record
func (t *stateTx) clear() error {
	_, err := t.tx.Exec(`DELETE FROM records`)
	return err
}

// upsertRecord inserts or replaces a record
func (t *stateTx) upsertRecord(rec *domain.Record) error {
	payload, err := marshalPayload(recordPayload{Children: rec.Children, Chain: rec.Chain})
	if err != nil {
		return err
	}
	_, err = t.tx.Exec(`
		INSERT OR REPLACE INTO records (path, parent, error, synced_at, soft_excluded_at, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.Path, rec.Parent, rec.Error.String(), toUnixNano(rec.LastSyncedAt), toUnixNano(rec.SoftExcludedAt), payload)
	return err
}

// setMeta stores one metadata value
func (t *stateTx) setMeta(key, value string) error {
	_, err := t.tx.Exec(`INSERT OR REPLACE INTO meta (key, value) VALUES (?, ?)`, key, value)
	return err
}

// Commit commits the transaction
func (t *stateTx) Commit() error {
	return t.tx.Commit()
}

// Rollback aborts the transaction
func (t *stateTx) Rollback() error {
	return t.tx.Rollback()
}
