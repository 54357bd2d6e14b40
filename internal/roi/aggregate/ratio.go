package aggregate

import (
	"bytes"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Ratio é o retorno (payout / stake). Sem apostas o valor é inválido e
// deve ser exibido como marcador, nunca como 0% ou NaN.
type Ratio struct {
	value float64
	valid bool
}

// RatioOf divide payout por stake; stake <= 0 gera razão inválida
func RatioOf(payout, stake decimal.Decimal) Ratio {
	if !stake.IsPositive() {
		return Ratio{}
	}
	return Ratio{value: payout.Div(stake).InexactFloat64(), valid: true}
}

// Value retorna a razão e se ela é válida
func (r Ratio) Value() (float64, bool) { return r.value, r.valid }

func (r Ratio) Valid() bool { return r.valid }

// Percent retorna a razão em pontos percentuais (1.5 -> 150)
func (r Ratio) Percent() (float64, bool) { return r.value * 100, r.valid }

// MarshalJSON serializa razões inválidas como null
func (r Ratio) MarshalJSON() ([]byte, error) {
	if !r.valid {
		return []byte("null"), nil
	}
	return json.Marshal(r.value)
}

// UnmarshalJSON aceita null (inválida) ou um número
func (r *Ratio) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*r = Ratio{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*r = Ratio{value: v, valid: true}
	return nil
}
