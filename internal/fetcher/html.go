package fetcher

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	apperrors "valuationcli/internal/errors"
	"valuationcli/pkg/contracts/domain"
)

// ParseHTMLTable extracts a table from an HTML document. With an empty
// tableID the first table in document order is used. The header is the
// first row made only of <th> cells, or the first row when there is none;
// every later row is data. Cell text is whitespace-collapsed.
func ParseHTMLTable(r io.Reader, tableID, source string) (domain.RawTable, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return domain.RawTable{}, apperrors.NewFetchError("parse HTML from "+source, err)
	}

	table := findTable(doc, tableID)
	if table == nil {
		msg := "no <table> element in page"
		if tableID != "" {
			msg = fmt.Sprintf("no <table id=%q> element in page", tableID)
		}
		return domain.RawTable{}, apperrors.NewFetchError(msg, nil).WithContext("source", source)
	}

	var rows [][]string
	headerIdx := -1
	for _, tr := range tableRows(table) {
		cells, allHeader := rowCells(tr)
		if len(cells) == 0 {
			continue
		}
		if headerIdx < 0 && allHeader {
			headerIdx = len(rows)
		}
		rows = append(rows, cells)
	}
	if len(rows) == 0 {
		return domain.RawTable{}, apperrors.NewFetchError("table has no rows", nil).WithContext("source", source)
	}
	if headerIdx < 0 {
		headerIdx = 0
	}

	return domain.RawTable{
		Source:  source,
		Headers: rows[headerIdx],
		Rows:    rows[headerIdx+1:],
	}, nil
}

func findTable(n *html.Node, id string) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == atom.Table {
		if id == "" || attr(n, "id") == id {
			return n
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTable(c, id); t != nil {
			return t
		}
	}
	return nil
}

// tableRows returns the <tr> elements of table, skipping nested tables
func tableRows(table *html.Node) []*html.Node {
	var rows []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type != html.ElementNode {
				continue
			}
			switch c.DataAtom {
			case atom.Table:
				continue
			case atom.Tr:
				rows = append(rows, c)
			default:
				walk(c)
			}
		}
	}
	walk(table)
	return rows
}

func rowCells(tr *html.Node) ([]string, bool) {
	var cells []string
	allHeader := true
	for c := tr.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.DataAtom {
		case atom.Th:
		case atom.Td:
			allHeader = false
		default:
			continue
		}
		cells = append(cells, strings.Join(strings.Fields(textContent(c)), " "))
	}
	return cells, allHeader && len(cells) > 0
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
