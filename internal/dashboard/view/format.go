// Package view formata os valores calculados para exibição (ienes, percentuais,
// marcadores) e monta o modelo da página do dashboard.
package view

import (
	"strconv"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/radieske/keiba-roi-dashboard/internal/roi/aggregate"
)

const (
	// Placeholder substitui valores ausentes ou indefinidos
	Placeholder = "—"
	// ErrorPlaceholder aparece no resumo anual quando a carga falha
	ErrorPlaceholder = "読込エラー"
)

var ja = message.NewPrinter(language.Japanese)

// Yen arredonda para o iene inteiro (metade para longe do zero): 6000 -> "6,000円"
func Yen(d decimal.Decimal) string {
	return ja.Sprintf("%d円", d.Round(0).IntPart())
}

// Percent formata a razão com uma casa: 1.5 -> "150.0%"; inválida -> "—"
func Percent(r aggregate.Ratio) string {
	p, ok := r.Percent()
	if !ok {
		return Placeholder
	}
	return ja.Sprintf("%.1f%%", p)
}

// OptInt exibe o número ou o marcador quando ausente
func OptInt(v *int) string {
	if v == nil {
		return Placeholder
	}
	return strconv.Itoa(*v)
}

// Races: "3レース"
func Races(n int) string { return strconv.Itoa(n) + "レース" }
