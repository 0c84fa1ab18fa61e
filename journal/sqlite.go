package journal

import (
	"database/sql"

	_ "github.com/mattn/go-sqlite3"
)

type SQLite struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLite{db: db}, nil
}

// RecordTrade inserts t, replacing an earlier record with the same id.
func (j *SQLite) RecordTrade(t TradeRecord) error {
	_, err := j.db.Exec(`
		INSERT OR REPLACE INTO trades
		(trade_id, underlying, type, short_strike, long_strike, credit, max_risk, dte, open_time, close_time, realized_pl, return_on_risk)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.TradeID, t.Underlying, t.Type, t.ShortStrike, t.LongStrike, t.Credit,
		t.MaxRisk, t.DTE, t.OpenTime.UTC(), t.CloseTime.UTC(), t.RealizedPL, t.ReturnOnRisk,
	)
	return err
}

func (j *SQLite) RecordBalance(b BalanceSnapshot) error {
	_, err := j.db.Exec(`
		INSERT INTO balance
		(time, balance, capital_at_risk, available, open_positions)
		VALUES (?, ?, ?, ?, ?)`,
		b.Time.UTC(), b.Balance, b.CapitalAtRisk, b.Available, b.OpenPositions,
	)
	return err
}

func (j *SQLite) Close() error {
	return j.db.Close()
}
