// Package repo lê as apostas de um espelho da planilha no Postgres (somente leitura).
package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
)

// MirrorHeader é o cabeçalho canônico devolvido junto com as linhas do espelho
var MirrorHeader = []string{"date", "race", "honmei", "ninki", "chaku", "payout", "timestamp"}

// SheetMirror espelha as colunas da planilha numa tabela do Postgres.
// Nunca escreve: a planilha continua sendo a fonte da verdade.
type SheetMirror struct {
	DB        *sql.DB
	TableName string // default "bet_sheet_rows"
}

func (m *SheetMirror) Name() string { return "postgres" }

// Table devolve cabeçalho + linhas como texto, no mesmo formato do CSV
func (m *SheetMirror) Table(ctx context.Context) ([][]string, error) {
	rows, err := m.DB.QueryContext(ctx, m.query())
	if err != nil {
		return nil, fmt.Errorf("query sheet mirror: %w", err)
	}
	defer rows.Close()

	out := [][]string{MirrorHeader}
	for rows.Next() {
		var cells [7]sql.NullString
		if err := rows.Scan(&cells[0], &cells[1], &cells[2], &cells[3], &cells[4], &cells[5], &cells[6]); err != nil {
			return nil, fmt.Errorf("scan sheet mirror: %w", err)
		}
		out = append(out, rowStrings(cells[:]))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sheet mirror: %w", err)
	}
	return out, nil
}

func (m *SheetMirror) query() string {
	table := m.TableName
	if table == "" {
		table = "bet_sheet_rows"
	}
	// id preserva a ordem de inserção, que equivale à ordem das linhas na planilha
	return fmt.Sprintf(`
		SELECT to_char(race_date, 'YYYY/MM/DD'), race, honmei,
		       ninki::text, chaku::text, payout::text,
		       to_char(recorded_at, 'YYYY-MM-DD"T"HH24:MI:SS')
		FROM %s
		ORDER BY race_date, id;
	`, pq.QuoteIdentifier(table))
}

// rowStrings converte NULL em célula vazia, como a planilha exporta
func rowStrings(cells []sql.NullString) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		if c.Valid {
			out[i] = c.String
		}
	}
	return out
}
