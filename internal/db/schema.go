package db

// SchemaSQL is the complete schema for fresh installs.
//
// This is the single source of truth for the database schema. Repository
// tests load it via GetSchemaSQL() instead of hardcoding CREATE TABLE
// statements, so a column referenced by repository code but missing here
// fails tests immediately with "no such column".
const SchemaSQL = `
-- Users (only what the workflow needs: ownership, roles, active flag)
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	role TEXT NOT NULL CHECK(role IN ('member', 'admin')) DEFAULT 'member',
	active INTEGER NOT NULL DEFAULT 1,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Cases (RCFA investigation records)
CREATE TABLE IF NOT EXISTS cases (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	asset TEXT,
	failure_description TEXT,
	background TEXT,
	status TEXT NOT NULL CHECK(status IN ('draft', 'investigation', 'actions_open', 'closed')) DEFAULT 'draft',
	owner_id TEXT NOT NULL,
	creator_id TEXT NOT NULL,
	notes TEXT,
	notes_updated_at DATETIME,
	deleted INTEGER NOT NULL DEFAULT 0,
	closed_by TEXT,
	closed_at DATETIME,
	closure_summary TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (owner_id) REFERENCES users(id),
	FOREIGN KEY (creator_id) REFERENCES users(id)
);

-- Follow-up questions (created in batches by analysis, never deleted)
CREATE TABLE IF NOT EXISTS followup_questions (
	id TEXT PRIMARY KEY,
	case_id TEXT NOT NULL,
	text TEXT NOT NULL,
	category TEXT NOT NULL DEFAULT 'general',
	answer TEXT,
	answered_by TEXT,
	answered_at DATETIME,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (case_id) REFERENCES cases(id) ON DELETE CASCADE
);

-- Root-cause candidates (ai- or human-authored, awaiting promotion)
CREATE TABLE IF NOT EXISTS root_cause_candidates (
	id TEXT PRIMARY KEY,
	case_id TEXT NOT NULL,
	cause_text TEXT NOT NULL,
	detail TEXT,
	confidence TEXT NOT NULL CHECK(confidence IN ('deprioritized', 'low', 'medium', 'high')),
	generated_by TEXT NOT NULL CHECK(generated_by IN ('ai', 'human')),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (case_id) REFERENCES cases(id) ON DELETE CASCADE
);

-- Action-item candidates
CREATE TABLE IF NOT EXISTS action_item_candidates (
	id TEXT PRIMARY KEY,
	case_id TEXT NOT NULL,
	text TEXT NOT NULL,
	description TEXT,
	priority TEXT NOT NULL CHECK(priority IN ('low', 'medium', 'high', 'critical')),
	generated_by TEXT NOT NULL CHECK(generated_by IN ('ai', 'human')),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (case_id) REFERENCES cases(id) ON DELETE CASCADE
);

-- Final (human-ratified) root causes. The unique constraint on
-- promoted_from_id enforces at most one promotion per candidate.
CREATE TABLE IF NOT EXISTS root_cause_finals (
	id TEXT PRIMARY KEY,
	case_id TEXT NOT NULL,
	cause_text TEXT NOT NULL,
	detail TEXT,
	promoted_from_id TEXT UNIQUE,
	created_by TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (case_id) REFERENCES cases(id) ON DELETE CASCADE,
	FOREIGN KEY (promoted_from_id) REFERENCES root_cause_candidates(id)
);

-- Action items (numbered per case; draft items activate at finalize)
CREATE TABLE IF NOT EXISTS action_items (
	id TEXT PRIMARY KEY,
	case_id TEXT NOT NULL,
	number INTEGER NOT NULL,
	title TEXT NOT NULL,
	description TEXT,
	priority TEXT NOT NULL CHECK(priority IN ('low', 'medium', 'high', 'critical')) DEFAULT 'medium',
	status TEXT NOT NULL CHECK(status IN ('draft', 'open', 'in_progress', 'blocked', 'done', 'canceled')) DEFAULT 'draft',
	owner_id TEXT,
	due_date DATETIME,
	completed_at DATETIME,
	completion_note TEXT,
	created_by TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (case_id) REFERENCES cases(id) ON DELETE CASCADE,
	FOREIGN KEY (owner_id) REFERENCES users(id),
	UNIQUE(case_id, number)
);

-- Audit events (append-only; no update or delete path exists)
CREATE TABLE IF NOT EXISTS audit_events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	case_id TEXT NOT NULL,
	event_type TEXT NOT NULL,
	actor_id TEXT NOT NULL,
	payload TEXT NOT NULL,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (case_id) REFERENCES cases(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_cases_status ON cases(status);
CREATE INDEX IF NOT EXISTS idx_questions_case ON followup_questions(case_id);
CREATE INDEX IF NOT EXISTS idx_rc_candidates_case ON root_cause_candidates(case_id);
CREATE INDEX IF NOT EXISTS idx_ai_candidates_case ON action_item_candidates(case_id);
CREATE INDEX IF NOT EXISTS idx_finals_case ON root_cause_finals(case_id);
CREATE INDEX IF NOT EXISTS idx_items_case ON action_items(case_id);
CREATE INDEX IF NOT EXISTS idx_audit_case ON audit_events(case_id, id);
`

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
