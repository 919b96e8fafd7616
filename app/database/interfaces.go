package database

type RunRepository interface {
	SaveRun(run Run) (*Run, error)
	GetRun(date string) (*Run, error)
	ListRuns(limit int) ([]Run, error)
	GetRunCount() (int, error)
}
