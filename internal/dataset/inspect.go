package dataset

// Kind is the inferred type of a column's non-empty cells.
type Kind string

const (
	KindNumber Kind = "number"
	KindDate   Kind = "date"
	KindText   Kind = "text"
)

// Info summarizes a dataset's shape and per-column contents.
type Info struct {
	Rows    int             `json:"rows"`
	Columns int             `json:"columns"`
	Missing map[string]int  `json:"missing"`
	Kinds   map[string]Kind `json:"kinds"`
}

// Describe computes the shape, missing-value counts, and inferred column
// kinds. A column counts as a number or date kind when every non-empty cell
// parses as one; a fully empty column is text.
func Describe(ds *Dataset) Info {
	info := Info{
		Rows:    len(ds.Rows),
		Columns: len(ds.Columns),
		Missing: make(map[string]int, len(ds.Columns)),
		Kinds:   make(map[string]Kind, len(ds.Columns)),
	}

	for _, col := range ds.Columns {
		missing := 0
		allNumber, allDate := true, true
		nonEmpty := 0
		for i := range ds.Rows {
			raw := ds.Rows[i][col]
			if raw == "" {
				missing++
				continue
			}
			nonEmpty++
			if _, ok := ds.Float(i, col); !ok {
				allNumber = false
			}
			if _, ok := parseDate(raw); !ok {
				allDate = false
			}
		}
		info.Missing[col] = missing
		switch {
		case nonEmpty == 0:
			info.Kinds[col] = KindText
		case allNumber:
			info.Kinds[col] = KindNumber
		case allDate:
			info.Kinds[col] = KindDate
		default:
			info.Kinds[col] = KindText
		}
	}
	return info
}

func clampRows(ds *Dataset, n int) int {
	if n < 0 {
		return 0
	}
	if n > len(ds.Rows) {
		return len(ds.Rows)
	}
	return n
}

// Head returns the first n rows as a new dataset sharing the column list.
// A negative n yields an empty dataset.
func Head(ds *Dataset, n int) *Dataset {
	n = clampRows(ds, n)
	return &Dataset{Columns: ds.Columns, Rows: ds.Rows[:n]}
}

// Tail returns the last n rows as a new dataset sharing the column list.
// A negative n yields an empty dataset.
func Tail(ds *Dataset, n int) *Dataset {
	n = clampRows(ds, n)
	return &Dataset{Columns: ds.Columns, Rows: ds.Rows[len(ds.Rows)-n:]}
}
