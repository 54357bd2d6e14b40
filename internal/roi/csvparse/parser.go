// Package csvparse tokeniza o CSV exportado pela planilha.
//
// Diferente de encoding/csv, o parser aceita "\r" sozinho como fim de linha,
// descarta linhas em branco (inclusive ",,,") e nunca falha: aspas sem
// fechamento no fim do texto apenas encerram a linha acumulada.
package csvparse

import (
	"io"
	"strings"
)

// Parse converte o texto em linhas de campos, na ordem original.
// Cada linha pode ter qualquer número de colunas.
func Parse(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		cur      strings.Builder
		inQuotes bool
	)

	flush := func() {
		row = append(row, cur.String())
		cur.Reset()
		if !blank(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	for i := 0; i < len(text); i++ {
		ch := text[i]
		switch {
		case ch == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				cur.WriteByte('"')
				i++
			} else {
				inQuotes = !inQuotes
			}
		case ch == ',' && !inQuotes:
			row = append(row, cur.String())
			cur.Reset()
		case (ch == '\n' || ch == '\r') && !inQuotes:
			if ch == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			flush()
		default:
			// bytes UTF-8 multibyte nunca colidem com os delimitadores ASCII
			cur.WriteByte(ch)
		}
	}
	flush()

	return rows
}

// ParseReader lê todo o conteúdo e delega para Parse
func ParseReader(r io.Reader) ([][]string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(string(b)), nil
}

// blank indica se todos os campos estão vazios ou só com espaços
func blank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
