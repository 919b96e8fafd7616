package database

import (
	"time"
)

// Run is one archived digest, keyed by its date.
type Run struct {
	ID        string  `db:"id" json:"id"`
	Date      string  `db:"run_date" json:"date"`
	Collected int     `db:"collected" json:"collected"`
	Filtered  int     `db:"filtered" json:"filtered"`
	Kept      int     `db:"kept" json:"kept"`
	Cost      float64 `db:"cost" json:"cost"`
	Digest    string  `db:"digest" json:"-"`
	CreatedAt int64   `db:"created_at" json:"created_at"` // unix seconds
}

func (r Run) CreatedTime() time.Time {
	return time.Unix(r.CreatedAt, 0).UTC()
}
