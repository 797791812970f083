package models

import "time"

// File описывает собранный из чанков файл.
type File struct {
	ID          string    `json:"file_id"`
	Name        string    `json:"file_name,omitempty"`
	Path        string    `json:"path"`
	Size        int64     `json:"size"`
	TotalParts  int       `json:"total_parts"`
	CompletedAt time.Time `json:"completed_at"`
}

