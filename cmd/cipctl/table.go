package main

import (
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

// rowTone marks rows that need the reader's attention.
type rowTone int

const (
	toneNormal rowTone = iota
	toneMuted
	toneWarn
	toneError
)

// tableView describes one rendered table. Tone is consulted per row and only
// applied when Colorize is set.
type tableView struct {
	Headers  []string
	Rows     [][]string
	Aligns   []columnAlignment
	Tone     func(row []string) rowTone
	Colorize bool
}

func renderTable(v tableView) string {
	columns := len(v.Headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range v.Headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range v.Rows {
		r := make(table.Row, columns)
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	if v.Colorize && v.Tone != nil {
		tw.SetRowPainter(table.RowPainter(func(row table.Row) text.Colors {
			cells := make([]string, len(row))
			for i, c := range row {
				cells[i], _ = c.(string)
			}
			return toneColors(v.Tone(cells))
		}))
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(v.Aligns) && v.Aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func toneColors(tone rowTone) text.Colors {
	switch tone {
	case toneMuted:
		return text.Colors{text.Faint}
	case toneWarn:
		return text.Colors{text.FgYellow}
	case toneError:
		return text.Colors{text.FgRed}
	default:
		return nil
	}
}

func shouldColorize(writer io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
