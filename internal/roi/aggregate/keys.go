package aggregate

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind é a granularidade de um agrupamento
type Kind string

const (
	KindDay   Kind = "day"
	KindWeek  Kind = "week"
	KindMonth Kind = "month"
)

// KeyFunc gera a chave do período de uma data
type KeyFunc func(time.Time) string

// DayKey -> "2024-05-01"
func DayKey(t time.Time) string { return t.Format("2006-01-02") }

// MonthKey -> "2024-05"
func MonthKey(t time.Time) string { return t.Format("2006-01") }

// WeekKey -> "2024-W01" (ISO-8601: semana começa na segunda e a semana 1
// contém a primeira quinta-feira do ano)
func WeekKey(t time.Time) string {
	y, w := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", y, w)
}

// Key retorna a função de chave da granularidade
func (k Kind) Key() (KeyFunc, bool) {
	switch k {
	case KindDay:
		return DayKey, true
	case KindWeek:
		return WeekKey, true
	case KindMonth:
		return MonthKey, true
	}
	return nil, false
}

// WeekLabel formata a chave ISO para exibição: "2024-W01" -> "2024年 第1週"
func WeekLabel(key string) string {
	y, w, ok := splitWeekKey(key)
	if !ok {
		return key
	}
	return fmt.Sprintf("%d年 第%d週", y, w)
}

func splitWeekKey(key string) (year, week int, ok bool) {
	ys, ws, found := strings.Cut(key, "-W")
	if !found {
		return 0, 0, false
	}
	y, err := strconv.Atoi(ys)
	if err != nil {
		return 0, 0, false
	}
	w, err := strconv.Atoi(ws)
	if err != nil || w < 1 || w > 53 {
		return 0, 0, false
	}
	return y, w, true
}
