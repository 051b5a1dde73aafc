package store

import (
	"fmt"
	"time"
)

// Export 一次导出记录
type Export struct {
	ID          int64     `json:"id"`
	WorkspaceID string    `json:"workspaceId"`
	Topic       string    `json:"topic"`
	FileName    string    `json:"fileName"`
	FileSize    int64     `json:"fileSize"`
	CreatedAt   time.Time `json:"createdAt"`
}

// RecordExport 写入导出记录，返回 id
func (s *Store) RecordExport(e Export) (int64, error) {
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.Exec(`
		INSERT INTO exports (workspace_id, topic, file_name, file_size, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.WorkspaceID, e.Topic, e.FileName, e.FileSize, e.CreatedAt)
	if err != nil {
		return 0, fmt.Errorf("failed to record export: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get export id: %w", err)
	}
	return id, nil
}

// ListExports 列出某个工作区的导出记录
func (s *Store) ListExports(workspaceID string) ([]Export, error) {
	rows, err := s.db.Query(`
		SELECT id, workspace_id, topic, file_name, file_size, created_at
		FROM exports
		WHERE workspace_id = ?
		ORDER BY id DESC
	`, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query exports: %w", err)
	}
	defer rows.Close()

	exports := []Export{}
	for rows.Next() {
		var e Export
		if err := rows.Scan(&e.ID, &e.WorkspaceID, &e.Topic, &e.FileName, &e.FileSize, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan export: %w", err)
		}
		exports = append(exports, e)
	}
	return exports, rows.Err()
}
