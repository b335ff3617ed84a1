package storage

// SQL statements for the transactions table. Deletion is soft so the sync
// worker can still resolve a deleted transaction when it mirrors the
// removal to the archive sheet.
const (
	insertTransaction = `
INSERT INTO transactions (amount_cents, category, tx_date, tx_type)
VALUES (?, ?, ?, ?)`

	softDeleteTransaction = `
UPDATE transactions SET deleted_at = CURRENT_TIMESTAMP
WHERE id = ? AND deleted_at IS NULL`

	selectTransactions = `
SELECT id, amount_cents, category, tx_date, tx_type
FROM transactions
WHERE deleted_at IS NULL
ORDER BY id`

	selectTransaction = `
SELECT id, amount_cents, category, tx_date, tx_type
FROM transactions
WHERE id = ?`

	selectBalanceCents = `
SELECT COALESCE(SUM(CASE WHEN tx_type = 'Income' THEN amount_cents ELSE -amount_cents END), 0)
FROM transactions
WHERE deleted_at IS NULL`

	selectPendingSync = `
SELECT id
FROM transactions
WHERE synced = 0 AND sync_error = 0 AND deleted_at IS NULL
ORDER BY id
LIMIT ?`

	markTransactionSynced = `
UPDATE transactions SET synced = 1, sync_error = 0 WHERE id = ?`

	markTransactionSyncError = `
UPDATE transactions SET sync_error = 1 WHERE id = ?`
)
