package ledger

const schema = `
CREATE TABLE IF NOT EXISTS meta (
	key TEXT PRIMARY KEY,
	value REAL NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	signal TEXT NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	quantity REAL NOT NULL,
	opened_at DATETIME NOT NULL,
	closed_at DATETIME NOT NULL,
	realized_pnl REAL NOT NULL,
	balance_after REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS balance_history (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	time DATETIME NOT NULL,
	delta REAL NOT NULL,
	balance REAL NOT NULL,
	reason TEXT NOT NULL,
	note TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_history_time ON balance_history(time);

-- Reset archives. SetBalance moves the full prior history here before
-- truncating; losing pre-reset history would be a data-loss bug.
CREATE TABLE IF NOT EXISTS archived_trades (
	reset_id TEXT NOT NULL,
	trade_id TEXT NOT NULL,
	signal TEXT NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	quantity REAL NOT NULL,
	opened_at DATETIME NOT NULL,
	closed_at DATETIME NOT NULL,
	realized_pnl REAL NOT NULL,
	balance_after REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS archived_history (
	reset_id TEXT NOT NULL,
	seq INTEGER NOT NULL,
	time DATETIME NOT NULL,
	delta REAL NOT NULL,
	balance REAL NOT NULL,
	reason TEXT NOT NULL,
	note TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS snapshots (
	time DATETIME NOT NULL,
	fed_rate REAL NOT NULL,
	treasury_10y REAL NOT NULL,
	cpi REAL NOT NULL,
	gold_price REAL NOT NULL,
	dxy_level REAL NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_time ON snapshots(time);
`
