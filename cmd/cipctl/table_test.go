package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/core-coin/cipctl/rewriter"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"
)

const ansiRed = "\x1b[31m"

func TestRenderTable_TonesProblemRows(t *testing.T) {
	text.EnableColors()

	view := tableView{
		Headers:  []string{"Document", "Outcome"},
		Rows:     [][]string{{"a.md", "updated"}, {"b.md", "failed"}},
		Tone:     outcomeTone,
		Colorize: true,
	}
	out := renderTable(view)
	assert.Contains(t, out, ansiRed)

	var failedLine string
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "b.md") {
			failedLine = line
		}
		if strings.Contains(line, "a.md") {
			assert.NotContains(t, line, ansiRed)
		}
	}
	assert.Contains(t, failedLine, ansiRed)

	view.Colorize = false
	assert.NotContains(t, renderTable(view), "\x1b[")
}

func TestRenderTable_PadsShortRows(t *testing.T) {
	out := renderTable(tableView{
		Headers: []string{"A", "B"},
		Rows:    [][]string{{"only"}},
	})
	assert.Contains(t, out, "only")
	assert.Empty(t, renderTable(tableView{}))
}

func TestOutcomeTone(t *testing.T) {
	assert.Equal(t, toneError, outcomeTone([]string{"a.md", string(rewriter.OutcomeFailed)}))
	assert.Equal(t, toneWarn, outcomeTone([]string{"a.md", string(rewriter.OutcomeSkipped)}))
	assert.Equal(t, toneMuted, outcomeTone([]string{"a.md", string(rewriter.OutcomeUnchanged)}))
	assert.Equal(t, toneNormal, outcomeTone([]string{"a.md", string(rewriter.OutcomeUpdated)}))
	assert.Equal(t, toneNormal, outcomeTone(nil))
}

func TestShouldColorize_NonTerminal(t *testing.T) {
	assert.False(t, shouldColorize(&bytes.Buffer{}))
}
