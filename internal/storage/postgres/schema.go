package postgres

// schema is applied idempotently on Open
var schema = []string{
	`CREATE TABLE IF NOT EXISTS players (
		id            BIGSERIAL    PRIMARY KEY,
		name          VARCHAR(100) NOT NULL UNIQUE,
		password_hash TEXT         NOT NULL,
		created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		id         BIGSERIAL     PRIMARY KEY,
		player_id  BIGINT        NOT NULL REFERENCES players(id),
		amount     NUMERIC(20,2) NOT NULL DEFAULT 0 CHECK (amount >= 0),
		created_at TIMESTAMPTZ   NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ   NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_player_id ON accounts(player_id, id)`,
	`CREATE TABLE IF NOT EXISTS operations (
		id         BIGSERIAL     PRIMARY KEY,
		account_id BIGINT        NOT NULL REFERENCES accounts(id),
		type       VARCHAR(10)   NOT NULL CHECK (type IN ('CREDIT', 'DEBIT')),
		amount     NUMERIC(20,2) NOT NULL CHECK (amount > 0),
		created_at TIMESTAMPTZ   NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_operations_account_id ON operations(account_id, id)`,
	`CREATE TABLE IF NOT EXISTS actions (
		id         BIGSERIAL   PRIMARY KEY,
		player_id  BIGINT      NOT NULL,
		type       VARCHAR(32) NOT NULL,
		status     VARCHAR(10) NOT NULL CHECK (status IN ('SUCCESS', 'FAIL')),
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_actions_player_id ON actions(player_id, id)`,
}
