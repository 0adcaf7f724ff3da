package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dolthub/tracecolumn/column"
	"github.com/dolthub/tracecolumn/store/colstore"
	"github.com/dolthub/tracecolumn/table"
	"github.com/dolthub/tracecolumn/view"
)

func buildCountsTable(e *Engine) *table.Table {
	t := table.New("counts", e.Pool(), 3)
	vals := colstore.NewDense[int64]()
	for _, v := range []int64{1, 2, 3} {
		vals.Append(v)
	}
	t.AddColumn(func(idx, overlay uint32) *column.Column {
		return column.NewInt64Column("n", vals, column.FlagSorted, idx, overlay)
	})
	return t
}

func TestEngineRegisterAndQueryTable(t *testing.T) {
	e := New(DefaultConfig())
	tbl := buildCountsTable(e)
	require.NoError(t, e.RegisterTable("counts", tbl))

	got, ok := e.Table("counts")
	require.True(t, ok)
	assert.Equal(t, uint32(3), got.RowCount())

	err := e.RegisterTable("counts", tbl)
	assert.Error(t, err)
}

func TestEngineRegisterAndQueryView(t *testing.T) {
	e := New(DefaultConfig())
	tbl := buildCountsTable(e)
	require.NoError(t, e.RegisterTable("counts", tbl))

	nodes := []view.TableNode{{Alias: "counts", Source: tbl, Parent: view.RootNode}}
	outputs := []view.OutputColumn{{Name: "n", NodeAlias: "counts", ColumnName: "n"}}
	_, err := e.RegisterView("counts_view", nodes, outputs)
	require.NoError(t, err)

	result, err := e.Query("counts_view", nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, uint32(3), result.RowCount())

	_, err = e.Query("missing", nil, nil, nil)
	assert.Error(t, err)
}

func TestEngineStats(t *testing.T) {
	e := New(DefaultConfig())
	tbl := buildCountsTable(e)
	require.NoError(t, e.RegisterTable("counts", tbl))
	stats := e.Stats()
	assert.Equal(t, 1, stats.TableCount)
	assert.Equal(t, 0, stats.ViewCount)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/path/to/config.toml")
	assert.Error(t, err)
}
