package dashboard

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteTableCSV(t *testing.T) {
	view := TableView{
		Columns: []Column{
			{Key: "name", Label: "Product"},
			{Key: "price", Label: "Price"},
			{Key: "rating", Label: "Rating"},
		},
		Rows: []Row{
			{ID: "p1", Values: map[string]any{"name": "Widget, large", "price": 10, "rating": 4.25}},
			{ID: "p2", Values: map[string]any{"name": "Gadget"}},
		},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteTableCSV(&buf, view))
	assert.Equal(t, "ID,Product,Price,Rating\np1,\"Widget, large\",10,4.25\np2,Gadget,,\n", buf.String())
}
