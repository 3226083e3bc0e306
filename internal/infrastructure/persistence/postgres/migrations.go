package postgres

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 001: CREATE USERS
// ══════════════════════════════════════════════════════════════════════════════

const migration001Up = `
-- Migration: Create users table
-- Version: 001

-- Registered students. Name and group are immutable after registration;
-- current_topic is the only mutable column.
CREATE TABLE IF NOT EXISTS users (
    user_id BIGINT PRIMARY KEY,
    full_name TEXT NOT NULL,
    username TEXT,
    group_name TEXT NOT NULL,
    current_topic TEXT,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_user_id CHECK (user_id > 0),
    CONSTRAINT nonempty_full_name CHECK (length(trim(full_name)) > 0)
);

CREATE INDEX IF NOT EXISTS idx_users_group_name ON users(group_name);
`

const migration001Down = `
DROP TABLE IF EXISTS users;
`

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATION 002: CREATE GRADES
// ══════════════════════════════════════════════════════════════════════════════

const migration002Up = `
-- Migration: Create grades journal
-- Version: 002

-- Append-only journal of graded submissions. Rows are never updated
-- or deleted; all statistics are derived from this table.
CREATE TABLE IF NOT EXISTS grades (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
    topic TEXT NOT NULL,
    grade SMALLINT NOT NULL,
    feedback TEXT,
    graded_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),

    CONSTRAINT valid_grade CHECK (grade >= 1 AND grade <= 5)
);

CREATE INDEX IF NOT EXISTS idx_grades_user_id ON grades(user_id);
CREATE INDEX IF NOT EXISTS idx_grades_graded_at ON grades(graded_at DESC);
CREATE INDEX IF NOT EXISTS idx_grades_user_graded_at ON grades(user_id, graded_at DESC);
`

const migration002Down = `
DROP TABLE IF EXISTS grades;
`

// GetMigrations returns all embedded migrations.
func GetMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_users",
			UpSQL:   migration001Up,
			DownSQL: migration001Down,
		},
		{
			Version: 2,
			Name:    "create_grades",
			UpSQL:   migration002Up,
			DownSQL: migration002Down,
		},
	}
}
