package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS runs (
    id                   TEXT PRIMARY KEY,
    created_at           TEXT NOT NULL,
    mode                 TEXT NOT NULL,
    params               TEXT NOT NULL,
    months               INTEGER NOT NULL,
    reached_target       INTEGER NOT NULL DEFAULT 0,
    final_balance        TEXT NOT NULL,
    contributed          TEXT NOT NULL,
    income               TEXT NOT NULL,
    benchmark            TEXT NOT NULL,
    difference           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS run_samples (
    run_id               TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
    idx                  INTEGER NOT NULL,
    month                INTEGER NOT NULL,
    contributed          REAL NOT NULL,
    yield                REAL NOT NULL,
    income               REAL NOT NULL,
    PRIMARY KEY (run_id, idx)
);

CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at);
`
