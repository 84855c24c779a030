package dataframe

import (
	"context"

	"github.com/paveg/plotdeck/internal/parallel"
	"github.com/paveg/plotdeck/internal/series"
)

// DefaultPreviewColumns is how many leading columns the raw-data preview shows
const DefaultPreviewColumns = 10

// ColumnProfile summarizes the distinct values of one column
type ColumnProfile struct {
	Name           string      `json:"name"`
	Kind           series.Kind `json:"kind"`
	DistinctCount  int         `json:"distinct_count"`
	DistinctValues []string    `json:"distinct_values"`
	Nulls          int         `json:"nulls"`
}

// DatasetProfile is the dataset information shown after an upload
type DatasetProfile struct {
	Rows           int             `json:"rows"`
	Columns        int             `json:"columns"`
	PreviewColumns []string        `json:"preview_columns"`
	ColumnProfiles []ColumnProfile `json:"column_profiles"`
}

// Profile computes row/column counts, per-column distinct values and the
// preview column list. previewColumns <= 0 selects DefaultPreviewColumns.
func Profile(df *Frame, previewColumns int) DatasetProfile {
	if previewColumns <= 0 {
		previewColumns = DefaultPreviewColumns
	}

	names := df.Columns()
	preview := names
	if len(preview) > previewColumns {
		preview = preview[:previewColumns]
	}

	// columns are profiled concurrently; the frame is read-only here
	profiles, _ := parallel.Map(context.Background(), 0, names, func(_ context.Context, _ int, name string) (ColumnProfile, error) {
		c, _ := df.Column(name)
		kind, _ := df.Kind(name)
		distinct := df.Distinct(name)

		nulls := 0
		for i := range c.Len() {
			if c.IsNull(i) {
				nulls++
			}
		}

		return ColumnProfile{
			Name:           name,
			Kind:           kind,
			DistinctCount:  len(distinct),
			DistinctValues: distinct,
			Nulls:          nulls,
		}, nil
	})
	if profiles == nil {
		profiles = []ColumnProfile{}
	}

	return DatasetProfile{
		Rows:           df.Len(),
		Columns:        df.Width(),
		PreviewColumns: preview,
		ColumnProfiles: profiles,
	}
}
