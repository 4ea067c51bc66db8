package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/wippyai/clayout/abi"
	"github.com/wippyai/clayout/layout"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#87CEEB")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	bitfieldStyle = cellStyle.
			Foreground(lipgloss.Color("#98FB98"))

	nestedStyle = cellStyle.
			Foreground(lipgloss.Color("#AAAAAA"))

	borderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

var memberColumns = []string{"MEMBER", "TYPE", "OFFSET", "SIZE", "ALIGN", "BITS"}

func renderText(w io.Writer, entries []entry, profile string, color bool) error {
	for i, e := range entries {
		if i > 0 {
			fmt.Fprintln(w)
		}

		title := fmt.Sprintf("%s (%s)", e.res.Root, profile)
		if color {
			title = titleStyle.Render(title)
		}
		fmt.Fprintf(w, "%s size %d, align %d\n", title, e.res.Size, e.res.Align)

		if len(e.res.Members) == 0 {
			continue
		}
		rows := memberRows(e.res)
		t := table.New().
			Headers(memberColumns...).
			Rows(rows...)
		if color {
			members := e.res.Members
			t = t.BorderStyle(borderStyle).
				StyleFunc(func(row, col int) lipgloss.Style {
					switch {
					case row == table.HeaderRow:
						return headerStyle
					case members[row].Bitfield:
						return bitfieldStyle
					case members[row].Depth > 0:
						return nestedStyle
					}
					return cellStyle
				})
		} else {
			t = t.Border(lipgloss.NormalBorder()).
				StyleFunc(func(int, int) lipgloss.Style { return cellStyle })
		}
		if _, err := fmt.Fprintln(w, t.Render()); err != nil {
			return err
		}
	}
	return nil
}

func memberRows(res *layout.Result) [][]string {
	rows := make([][]string, len(res.Members))
	for i, m := range res.Members {
		rows[i] = memberRow(m)
	}
	return rows
}

func memberRow(m layout.MemberLayout) []string {
	name := m.Name
	if name == "" {
		name = "<anonymous " + m.Type.Kind().String() + ">"
	}

	size := strconv.FormatInt(m.Size, 10)
	if m.Flexible {
		size = "0 (flexible)"
	}

	var bits string
	if m.Bitfield {
		bits = fmt.Sprintf("%d:%d", m.BitOffset, m.BitWidth)
	}

	return []string{
		strings.Repeat("  ", m.Depth) + name,
		m.Type.String(),
		strconv.FormatInt(m.Offset, 10),
		size,
		strconv.FormatInt(m.Align, 10),
		bits,
	}
}

func renderProfiles(w io.Writer, color bool) error {
	headers := []string{"NAME", "POINTER"}
	for _, s := range abi.ClassSizes {
		headers = append(headers, "ALIGN"+strconv.FormatInt(s, 10))
	}
	headers = append(headers, "UNIT REUSE", "FILL", "ALIGNED>PACK")

	t := table.New().Headers(headers...)
	for _, name := range abi.Presets() {
		p, _ := abi.Preset(name)
		row := []string{p.Name, strconv.FormatInt(p.PointerWidth, 10)}
		for _, a := range p.Alignments {
			row = append(row, strconv.FormatInt(a, 10))
		}
		row = append(row,
			strconv.FormatBool(p.BitfieldUnitReuse),
			p.BitfieldFill.String(),
			strconv.FormatBool(p.AlignedOverridesPack))
		t = t.Row(row...)
	}
	t = t.StyleFunc(func(row, _ int) lipgloss.Style {
		if color && row == table.HeaderRow {
			return headerStyle
		}
		return cellStyle
	})

	_, err := fmt.Fprintln(w, t.Render())
	return err
}

type resultDoc struct {
	Name    string      `json:"name"`
	Type    string      `json:"type"`
	Profile string      `json:"profile"`
	Members []memberDoc `json:"members"`
	Size    int64       `json:"size"`
	Align   int64       `json:"align"`
}

type memberDoc struct {
	BitOffset *int64 `json:"bit_offset,omitempty"`
	BitWidth  *int64 `json:"bit_width,omitempty"`
	Path      string `json:"path"`
	Access    string `json:"access,omitempty"`
	Name      string `json:"name,omitempty"`
	Type      string `json:"type"`
	Offset    int64  `json:"offset"`
	Size      int64  `json:"size"`
	Align     int64  `json:"align"`
	Depth     int    `json:"depth"`
	Anonymous bool   `json:"anonymous,omitempty"`
	Flexible  bool   `json:"flexible,omitempty"`
}

func renderJSON(w io.Writer, entries []entry) error {
	docs := make([]resultDoc, 0, len(entries))
	for _, e := range entries {
		doc := resultDoc{
			Name:    e.name,
			Type:    e.res.Root.String(),
			Profile: e.res.Profile,
			Size:    e.res.Size,
			Align:   e.res.Align,
			Members: make([]memberDoc, 0, len(e.res.Members)),
		}
		access := accessByPath(e.res)
		for _, m := range e.res.Members {
			md := memberDoc{
				Path:      m.PathString(),
				Access:    access[m.PathString()],
				Name:      m.Name,
				Type:      m.Type.String(),
				Offset:    m.Offset,
				Size:      m.Size,
				Align:     m.Align,
				Depth:     m.Depth,
				Anonymous: m.Anonymous,
				Flexible:  m.Flexible,
			}
			if m.Bitfield {
				md.BitOffset = &m.BitOffset
				md.BitWidth = &m.BitWidth
			}
			doc.Members = append(doc.Members, md)
		}
		docs = append(docs, doc)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(docs)
}

// accessByPath inverts the result's promotion table.
func accessByPath(res *layout.Result) map[string]string {
	out := make(map[string]string)
	for _, access := range res.AccessPaths() {
		if m, ok := res.Lookup(access); ok {
			out[m.PathString()] = access
		}
	}
	return out
}
