package store

import (
	"fmt"
	"time"
)

// Run 一次合并的运行记录
type Run struct {
	ID            int64     `json:"id"`
	WorkspaceID   string    `json:"workspaceId"`
	Topic         string    `json:"topic"`
	Subsidiaries  int       `json:"subsidiaries"`
	Branches      int       `json:"branches"`
	StagesRun     int       `json:"stagesRun"`
	StagesSkipped int       `json:"stagesSkipped"`
	CellsWritten  int       `json:"cellsWritten"`
	Atomic        bool      `json:"atomic"`
	Status        string    `json:"status"`
	ErrorMessage  string    `json:"errorMessage"`
	DurationMs    int64     `json:"durationMs"`
	CreatedAt     time.Time `json:"createdAt"`
}

// RecordRun 写入运行记录，返回 id
func (s *Store) RecordRun(r Run) (int64, error) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.Exec(`
		INSERT INTO runs (
			workspace_id, topic, subsidiaries, branches,
			stages_run, stages_skipped, cells_written,
			atomic, status, error_message, duration_ms, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.WorkspaceID, r.Topic, r.Subsidiaries, r.Branches,
		r.StagesRun, r.StagesSkipped, r.CellsWritten,
		r.Atomic, r.Status, r.ErrorMessage, r.DurationMs, r.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	return id, nil
}

// ListRuns 按时间倒序列出运行记录；topic 为空时不过滤
func (s *Store) ListRuns(topic string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, workspace_id, topic, subsidiaries, branches,
			stages_run, stages_skipped, cells_written,
			atomic, status, error_message, duration_ms, created_at
		FROM runs`
	args := []interface{}{}
	if topic != "" {
		query += " WHERE topic = ?"
		args = append(args, topic)
	}
	query += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.WorkspaceID, &r.Topic, &r.Subsidiaries, &r.Branches,
			&r.StagesRun, &r.StagesSkipped, &r.CellsWritten,
			&r.Atomic, &r.Status, &r.ErrorMessage, &r.DurationMs, &r.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
