package api

import (
	"github.com/lysyi3m/herald/app/database"
)

type Handler struct {
	runs    database.RunRepository
	version string
}

type digestSummary struct {
	Date      string  `json:"date"`
	Collected int     `json:"collected"`
	Filtered  int     `json:"filtered"`
	Kept      int     `json:"kept"`
	Cost      float64 `json:"cost"`
	CreatedAt string  `json:"created_at"`
	URL       string  `json:"url"`
}
