package journeystore

const schema = `
CREATE TABLE IF NOT EXISTS journeys (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS log_entries (
    id TEXT PRIMARY KEY,
    journey_id TEXT NOT NULL REFERENCES journeys(id),
    seq INTEGER NOT NULL,
    type TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,
    outdated BOOLEAN DEFAULT FALSE,
    current_plan BOOLEAN DEFAULT FALSE,
    text TEXT,
    phase TEXT,
    task TEXT
);

CREATE INDEX IF NOT EXISTS idx_log_entries_journey ON log_entries(journey_id, seq);
CREATE INDEX IF NOT EXISTS idx_log_entries_type ON log_entries(type);
`
