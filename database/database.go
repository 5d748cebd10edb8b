package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Ranch-o/World-Model-Anomaly-Detection-Autonomous-Driving/types"

	_ "github.com/mattn/go-sqlite3"
)

// InitDatabase initializes and returns a score index connection
func InitDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	// Create table if it doesn't exist
	createTableSQL := `
	CREATE TABLE IF NOT EXISTS frame_scores (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		frame_number INTEGER NOT NULL,
		input_path TEXT NOT NULL,
		synthesized_path TEXT NOT NULL,
		output_path TEXT NOT NULL,
		width INTEGER,
		height INTEGER,
		mean_score REAL,
		max_score REAL,
		p95_score REAL,
		created_at TEXT,
		UNIQUE(output_path)
	);
	CREATE INDEX IF NOT EXISTS idx_frame_number ON frame_scores(frame_number);
	CREATE INDEX IF NOT EXISTS idx_mean_score ON frame_scores(mean_score);`

	_, err = db.Exec(createTableSQL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error creating frame_scores table: %v", err)
	}

	return db, nil
}

// OpenDatabase opens an existing score index connection
func OpenDatabase(dbPath string) (*sql.DB, error) {
	return sql.Open("sqlite3", dbPath)
}

// StoreFrameScore stores one frame's scores in the index. Re-running a
// frame replaces its previous row.
func StoreFrameScore(db *sql.DB, score types.FrameScore) error {
	stmt, err := db.Prepare(`
		INSERT OR REPLACE INTO frame_scores (
			frame_number, input_path, synthesized_path, output_path,
			width, height, mean_score, max_score, p95_score, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("cannot prepare statement for frame %d: %v", score.FrameNumber, err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(
		score.FrameNumber,
		score.InputPath,
		score.SynthesizedPath,
		score.OutputPath,
		score.Width,
		score.Height,
		score.MeanScore,
		score.MaxScore,
		score.P95Score,
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("cannot insert scores for frame %d: %v", score.FrameNumber, err)
	}

	return nil
}

// GetRunStats retrieves aggregate statistics over all stored frame scores
func GetRunStats(db *sql.DB) (*types.RunStats, error) {
	var stats types.RunStats

	err := db.QueryRow("SELECT COUNT(*) FROM frame_scores").Scan(&stats.TotalFrames)
	if err != nil {
		return nil, fmt.Errorf("failed to count frames: %v", err)
	}

	if stats.TotalFrames == 0 {
		return &stats, nil
	}

	err = db.QueryRow("SELECT AVG(mean_score), MAX(max_score) FROM frame_scores").
		Scan(&stats.AvgMeanScore, &stats.MaxScore)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate scores: %v", err)
	}

	return &stats, nil
}

// TopAnomalousFrames returns the frames with the highest mean score,
// most anomalous first.
func TopAnomalousFrames(db *sql.DB, limit int) ([]types.FrameScore, error) {
	rows, err := db.Query(`
		SELECT id, frame_number, input_path, synthesized_path, output_path,
		       width, height, mean_score, max_score, p95_score, created_at
		FROM frame_scores ORDER BY mean_score DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query top frames: %v", err)
	}
	defer rows.Close()

	var scores []types.FrameScore
	for rows.Next() {
		var s types.FrameScore
		err := rows.Scan(&s.ID, &s.FrameNumber, &s.InputPath, &s.SynthesizedPath,
			&s.OutputPath, &s.Width, &s.Height, &s.MeanScore, &s.MaxScore,
			&s.P95Score, &s.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan frame score: %v", err)
		}
		scores = append(scores, s)
	}

	return scores, rows.Err()
}
