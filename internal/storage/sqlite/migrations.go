package sqlite

import "database/sql"

// schema sets up the database. It runs on startup to ensure tables exist.
// position keeps the collection in the order it was saved.
const schema = `
CREATE TABLE IF NOT EXISTS bills (
    id TEXT PRIMARY KEY,
    position INTEGER NOT NULL,
    name TEXT NOT NULL,
    amount TEXT NOT NULL,
    due_date TEXT NOT NULL,
    status TEXT NOT NULL CHECK (status IN ('pending', 'paid', 'overdue')),
    auto_pay_enabled INTEGER NOT NULL DEFAULT 0,
    provider TEXT NOT NULL DEFAULT '',
    account_number TEXT NOT NULL DEFAULT '',
    last_paid_date TEXT
);

CREATE INDEX IF NOT EXISTS idx_bills_due_date ON bills(due_date);
CREATE INDEX IF NOT EXISTS idx_bills_status ON bills(status);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
