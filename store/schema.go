package store

const schema = `
CREATE TABLE IF NOT EXISTS movies (
	row_idx      INTEGER PRIMARY KEY,
	id           INTEGER NOT NULL,
	external_id  INTEGER NULL,
	title        TEXT NOT NULL,
	overview     TEXT NOT NULL DEFAULT '',
	release_date TEXT NOT NULL DEFAULT '',
	vote_average REAL NOT NULL DEFAULT 0,
	vote_count   INTEGER NOT NULL DEFAULT 0,
	popularity   REAL NOT NULL DEFAULT 0,
	genres       TEXT NOT NULL DEFAULT '[]',
	poster_path  TEXT NOT NULL DEFAULT '',
	text_content TEXT NOT NULL,
	embedding    BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS movies_id ON movies(id);
CREATE TABLE IF NOT EXISTS manifest (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`
