package report

import (
	"bytes"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DrSkyle/chainpath/pkg/graph"
)

var sample = Result{
	From: "Potato",
	To:   "Alex",
	Paths: []graph.Path{
		{"Potato", "Sasha", "Alex"},
		{"Potato", "Yulik", "Sasha", "Alex"},
	},
}

func TestRenderGolden(t *testing.T) {
	g := goldie.New(t)

	tests := []struct {
		name   string
		format string
		result Result
	}{
		{"text", FormatText, sample},
		{"json", FormatJSON, sample},
		{"csv", FormatCSV, sample},
		{"text_single", FormatText, Result{From: "Potato", To: "Sasha", Paths: []graph.Path{{"Potato", "Sasha"}}}},
		{"text_empty", FormatText, Result{From: "Potato", To: "Hermit"}},
		{"json_empty", FormatJSON, Result{From: "Potato", To: "Hermit"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Render(&buf, tt.format, tt.result))
			g.Assert(t, tt.name, buf.Bytes())
		})
	}
}

func TestRenderDefaultsToText(t *testing.T) {
	var a, b bytes.Buffer
	require.NoError(t, Render(&a, "", sample))
	require.NoError(t, RenderText(&b, sample))
	assert.Equal(t, b.String(), a.String())
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Render(&buf, "xml", sample)
	assert.ErrorContains(t, err, `"xml"`)
	assert.Zero(t, buf.Len())
}
