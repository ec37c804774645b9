package wikidoc

import "context"

// Tabulator reconstructs a rasterized table into JSON.
//
// The grid is the text form of a table: cells joined with commas, rows
// separated by blank lines. Rows with fewer cells than their neighbours
// indicate merged columns. The returned JSON is not validated.
type Tabulator interface {
	Tabulate(ctx context.Context, grid string) (json string, err error)
}
