package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/Priyansh0418/Haski-sub005/internal/domain"
)

// SQLiteLog persists rule applications in a local SQLite database. The rule
// snapshot is stored as a JSON document so the audit trail survives later
// edits to the rule file.
type SQLiteLog struct {
	db     *sql.DB
	logger *logrus.Logger
}

// NewSQLiteLog opens (creating if needed) the audit database at dbPath.
func NewSQLiteLog(dbPath string, logger *logrus.Logger) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening audit database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	schema := `
	CREATE TABLE IF NOT EXISTS rule_applications (
		id TEXT PRIMARY KEY,
		rule_id TEXT NOT NULL,
		rule_snapshot TEXT NOT NULL,
		analysis_id TEXT NOT NULL,
		matched_predicates TEXT NOT NULL,
		seq INTEGER NOT NULL,
		created_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_rule_applications_analysis ON rule_applications(analysis_id, seq);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating audit schema: %w", err)
	}

	return &SQLiteLog{db: db, logger: logger}, nil
}

// Record appends an audit entry. Per-analysis order is preserved via a
// monotonic sequence number assigned inside a transaction.
func (l *SQLiteLog) Record(ctx context.Context, rule domain.Rule, analysisID string, matchedPredicates []string) (*domain.RuleApplication, error) {
	snapshot, err := json.Marshal(rule.Clone())
	if err != nil {
		return nil, fmt.Errorf("marshaling rule snapshot: %w", err)
	}
	predicates, err := json.Marshal(matchedPredicates)
	if err != nil {
		return nil, fmt.Errorf("marshaling matched predicates: %w", err)
	}

	app := &domain.RuleApplication{
		ID:                uuid.NewString(),
		RuleID:            rule.ID,
		RuleSnapshot:      rule.Clone(),
		AnalysisID:        analysisID,
		MatchedPredicates: append([]string(nil), matchedPredicates...),
		Timestamp:         time.Now().UTC(),
	}

	tx, err := l.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning audit transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(seq), 0) + 1 FROM rule_applications WHERE analysis_id = ?",
		analysisID,
	).Scan(&seq); err != nil {
		return nil, fmt.Errorf("assigning audit sequence: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO rule_applications (id, rule_id, rule_snapshot, analysis_id, matched_predicates, seq, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.RuleID, string(snapshot), app.AnalysisID, string(predicates), seq, app.Timestamp,
	); err != nil {
		return nil, fmt.Errorf("inserting audit entry: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing audit entry: %w", err)
	}

	return app, nil
}

// Query returns the audit entries for an analysis in recording order.
func (l *SQLiteLog) Query(ctx context.Context, analysisID string) ([]*domain.RuleApplication, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, rule_id, rule_snapshot, analysis_id, matched_predicates, created_at
		FROM rule_applications
		WHERE analysis_id = ?
		ORDER BY seq ASC`,
		analysisID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying audit entries: %w", err)
	}
	defer rows.Close()

	var apps []*domain.RuleApplication
	for rows.Next() {
		var (
			app           domain.RuleApplication
			snapshotJSON  string
			predicateJSON string
		)
		if err := rows.Scan(&app.ID, &app.RuleID, &snapshotJSON, &app.AnalysisID, &predicateJSON, &app.Timestamp); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}
		if err := json.Unmarshal([]byte(snapshotJSON), &app.RuleSnapshot); err != nil {
			return nil, fmt.Errorf("unmarshaling rule snapshot: %w", err)
		}
		if err := json.Unmarshal([]byte(predicateJSON), &app.MatchedPredicates); err != nil {
			return nil, fmt.Errorf("unmarshaling matched predicates: %w", err)
		}
		apps = append(apps, &app)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating audit entries: %w", err)
	}

	return apps, nil
}

// Close releases the underlying database handle.
func (l *SQLiteLog) Close() error {
	return l.db.Close()
}
