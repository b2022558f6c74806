package api

import (
	"context"
	"strings"

	"github.com/apache/arrow-go/v18/arrow"

	"github.com/0xknxwledge/lvrctl/internal/columnar"
	"github.com/0xknxwledge/lvrctl/internal/objstore"
)

// readArtifactRows loads a precomputed Parquet artifact and flattens it into
// plain JSON-able rows, keyed by column name. The precomputation stage
// produces over a dozen distinct schemas; a generic reader here avoids a
// bespoke typed response struct per artifact.
func readArtifactRows(ctx context.Context, store objstore.Store, path string) ([]map[string]any, error) {
	tbl, err := columnar.ReadTable(ctx, store, path)
	if err != nil {
		return nil, err
	}
	defer tbl.Release()

	schema := tbl.Schema()
	n := int(tbl.NumRows())
	rows := make([]map[string]any, n)
	for i := range rows {
		rows[i] = make(map[string]any, schema.NumFields())
	}

	for idx := 0; idx < schema.NumFields(); idx++ {
		field := schema.Field(idx)
		switch field.Type {
		case arrow.PrimitiveTypes.Uint64:
			for i, v := range columnar.Uint64Column(tbl, idx) {
				rows[i][field.Name] = v
			}
		case arrow.PrimitiveTypes.Float64:
			for i, v := range columnar.Float64Column(tbl, idx) {
				rows[i][field.Name] = v
			}
		case arrow.BinaryTypes.String:
			for i, v := range columnar.StringColumn(tbl, idx) {
				rows[i][field.Name] = v
			}
		}
	}
	return rows, nil
}

// filterRows keeps only rows whose string-valued column equals want
// (case-insensitive). An empty want is a no-op.
func filterRows(rows []map[string]any, column, want string) []map[string]any {
	if want == "" {
		return rows
	}
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		v, ok := row[column].(string)
		if ok && strings.EqualFold(v, want) {
			out = append(out, row)
		}
	}
	return out
}
