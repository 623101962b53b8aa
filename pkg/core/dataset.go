package core

import "time"

// DatasetOrigin tells where a dataset came from.
type DatasetOrigin string

// Dataset origins.
const (
	OriginSample DatasetOrigin = "sample"
	OriginUpload DatasetOrigin = "upload"
)

// Dataset describes a named table available for querying.
// Rows live entirely in the relational engine.
type Dataset struct {
	ID             string        `json:"id" yaml:"id"`
	Name           string        `json:"name" yaml:"name"`
	Description    string        `json:"description" yaml:"description"`
	TableName      string        `json:"table_name" yaml:"table_name"`
	ExampleQueries []string      `json:"example_queries" yaml:"example_queries"`
	LearningGoals  []string      `json:"learning_goals" yaml:"learning_goals"`
	Columns        []string      `json:"columns" yaml:"-"`
	RowCount       int64         `json:"row_count" yaml:"-"`
	Origin         DatasetOrigin `json:"origin" yaml:"-"`
	CreatedAt      time.Time     `json:"created_at,omitzero" yaml:"-"`
}

// Upload is the registry record of an uploaded CSV dataset.
type Upload struct {
	ID           string
	TableName    string
	OriginalName string
	Location     string
	Columns      []string
	RowCount     int64
	CreatedAt    time.Time
}

// Dataset converts the upload record into a catalog entry.
func (u *Upload) Dataset() Dataset {
	return Dataset{
		ID:          u.TableName,
		Name:        u.OriginalName,
		Description: "Uploaded dataset",
		TableName:   u.TableName,
		ExampleQueries: []string{
			"SELECT * FROM " + u.TableName + " LIMIT 10",
			"SELECT COUNT(*) FROM " + u.TableName,
		},
		Columns:   u.Columns,
		RowCount:  u.RowCount,
		Origin:    OriginUpload,
		CreatedAt: u.CreatedAt,
	}
}
