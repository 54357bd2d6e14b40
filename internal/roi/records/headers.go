package records

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Field identifica uma coluna lógica da planilha
type Field string

const (
	FieldDate           Field = "date"
	FieldRace           Field = "race"
	FieldHorse          Field = "horse"
	FieldFavoriteRank   Field = "favorite_rank"
	FieldFinishPosition Field = "finish_position"
	FieldPayout         Field = "payout"
	FieldTimestamp      Field = "timestamp"
)

// Fields lista as colunas lógicas na ordem do formulário original
var Fields = []Field{
	FieldDate, FieldRace, FieldHorse, FieldFavoriteRank, FieldFinishPosition, FieldPayout, FieldTimestamp,
}

// Synonyms mapeia cada coluna lógica para as grafias aceitas no cabeçalho (minúsculas)
type Synonyms map[Field][]string

// DefaultSynonyms retorna as grafias usadas pelo formulário e algumas variações em inglês
func DefaultSynonyms() Synonyms {
	return Synonyms{
		FieldDate:           {"date", "日付", "開催日"},
		FieldRace:           {"race", "レース", "レース名", "race name"},
		FieldHorse:          {"honmei", "本命", "本命馬", "本命馬名", "horse", "selected horse"},
		FieldFavoriteRank:   {"ninki", "人気", "本命人気", "favorite rank", "popularity"},
		FieldFinishPosition: {"chaku", "着順", "結果", "finish", "finish position"},
		FieldPayout:         {"payout", "払戻", "払い戻し", "払戻金", "回収額", "payout amount"},
		FieldTimestamp:      {"timestamp", "タイムスタンプ"},
	}
}

// LoadSynonyms lê grafias extras de um YAML e acrescenta às padrão.
//
//	date: [日にち]
//	payout: [配当]
func LoadSynonyms(path string) (Synonyms, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonyms file: %w", err)
	}

	var extra map[Field][]string
	if err := yaml.Unmarshal(data, &extra); err != nil {
		return nil, fmt.Errorf("parse synonyms file: %w", err)
	}

	syn := DefaultSynonyms()
	for f, names := range extra {
		if _, ok := syn[f]; !ok {
			return nil, fmt.Errorf("unknown field %q in synonyms file", f)
		}
		for _, n := range names {
			syn[f] = append(syn[f], canonicalHeader(n))
		}
	}
	return syn, nil
}

// Resolve devolve a coluna lógica de um texto de cabeçalho.
// Cabeçalhos desconhecidos passam adiante com o próprio nome normalizado.
func (s Synonyms) Resolve(h string) Field {
	x := canonicalHeader(h)
	for _, f := range Fields {
		for _, name := range s[f] {
			if x == name {
				return f
			}
		}
	}
	return Field(x)
}

// Header guarda o índice de cada coluna lógica, calculado uma vez por tabela
type Header map[Field]int

// NewHeader mapeia a linha de cabeçalho; em grafias repetidas vale a última coluna
func NewHeader(row []string, syn Synonyms) Header {
	h := make(Header, len(row))
	for i, name := range row {
		h[syn.Resolve(name)] = i
	}
	return h
}

// Pick retorna o valor da coluna lógica na linha; colunas ausentes ou linhas curtas viram ""
func (h Header) Pick(row []string, f Field) string {
	i, ok := h[f]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func canonicalHeader(h string) string {
	return strings.ToLower(strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(h), "\ufeff")))
}
