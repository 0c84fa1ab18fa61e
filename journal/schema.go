package journal

const Schema = `
CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	underlying TEXT NOT NULL,
	type TEXT NOT NULL,
	short_strike REAL NOT NULL,
	long_strike REAL NOT NULL,
	credit REAL NOT NULL,
	max_risk REAL NOT NULL,
	dte INTEGER NOT NULL,
	open_time DATETIME NOT NULL,
	close_time DATETIME NOT NULL,
	realized_pl REAL NOT NULL,
	return_on_risk REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_close_time ON trades(close_time);

CREATE TABLE IF NOT EXISTS balance (
	time DATETIME NOT NULL,
	balance REAL NOT NULL,
	capital_at_risk REAL NOT NULL,
	available REAL NOT NULL,
	open_positions INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_balance_time ON balance(time);
`
