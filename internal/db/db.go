package db

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/sial-ari/evm-token-sniper/internal/models"
)

type Database struct {
	db *sql.DB
}

// Initialize creates a new database connection and sets up the schema.
func Initialize(dbPath string) (*Database, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	_, err = db.Exec(`
        CREATE TABLE IF NOT EXISTS seen_pairs (
            chain_id INTEGER NOT NULL,
            pair_address TEXT NOT NULL,
            token_address TEXT,
            first_seen DATETIME,
            PRIMARY KEY (chain_id, pair_address)
        );

        CREATE TABLE IF NOT EXISTS trades (
            id TEXT PRIMARY KEY,
            action TEXT NOT NULL,
            token TEXT NOT NULL,
            amount TEXT NOT NULL,
            tx_hash TEXT,
            success INTEGER NOT NULL,
            error TEXT,
            auto INTEGER NOT NULL DEFAULT 0,
            created_at DATETIME
        );
    `)
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Database{db: db}, nil
}

func (d *Database) Close() error {
	return d.db.Close()
}

// IsSeen reports whether a pair was already emitted for this chain.
func (d *Database) IsSeen(chainID int64, pairAddress string) (bool, error) {
	var one int
	err := d.db.QueryRow(`
        SELECT 1 FROM seen_pairs WHERE chain_id = ? AND pair_address = ?`,
		chainID, pairAddress,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkSeen inserts the dedup key and reports whether this call won the
// insert. A false return means another poll already claimed the pair, so
// the caller must not emit it again.
func (d *Database) MarkSeen(chainID int64, pairAddress, tokenAddress string) (bool, error) {
	res, err := d.db.Exec(`
        INSERT OR IGNORE INTO seen_pairs (chain_id, pair_address, token_address, first_seen)
        VALUES (?, ?, ?, ?)`,
		chainID, pairAddress, tokenAddress, time.Now(),
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// SaveTrade records an execution attempt, successful or not, and returns
// the record id.
func (d *Database) SaveTrade(rec *models.TradeRecord) (string, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now()
	}
	_, err := d.db.Exec(`
        INSERT INTO trades (id, action, token, amount, tx_hash, success, error, auto, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, string(rec.Action), rec.Token, rec.Amount, rec.TxHash,
		rec.Success, rec.Error, rec.Auto, rec.CreatedAt,
	)
	if err != nil {
		return "", err
	}
	return rec.ID, nil
}

// RecentTrades returns the most recent execution attempts, newest first.
func (d *Database) RecentTrades(limit int) ([]models.TradeRecord, error) {
	rows, err := d.db.Query(`
        SELECT id, action, token, amount, tx_hash, success, error, auto, created_at
        FROM trades
        ORDER BY created_at DESC
        LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trades []models.TradeRecord
	for rows.Next() {
		var t models.TradeRecord
		var action string
		err := rows.Scan(
			&t.ID, &action, &t.Token, &t.Amount, &t.TxHash,
			&t.Success, &t.Error, &t.Auto, &t.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		t.Action = models.TradeAction(action)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}
