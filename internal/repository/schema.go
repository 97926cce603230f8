package repository

// SchemaStatements creates the observation tables when they do not exist.
// Later inserts for the same (symbol, date) replace earlier ones, matching
// the latest-arrival-wins rule the cleaner applies in memory.
var SchemaStatements = []string{
	`CREATE DATABASE IF NOT EXISTS stocklens`,
	`CREATE TABLE IF NOT EXISTS stocklens.daily_observations (
        symbol LowCardinality(String),
        date   DateTime('UTC'),
        open   Nullable(Float64),
        high   Nullable(Float64),
        low    Nullable(Float64),
        close  Nullable(Float64),
        volume Nullable(Float64),
        inserted_at DateTime DEFAULT now()
    ) ENGINE = ReplacingMergeTree(inserted_at)
    ORDER BY (symbol, date)`,
}
