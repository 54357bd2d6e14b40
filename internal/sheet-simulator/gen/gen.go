// Package gen gera uma exportação CSV fictícia no mesmo formato do formulário de apostas.
package gen

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"
)

// Header replica o cabeçalho do formulário (com a coluna de timestamp)
var Header = []string{"タイムスタンプ", "日付", "レース", "本命", "人気", "着順", "払戻"}

var (
	venues = []string{"東京", "中山", "京都", "阪神", "中京", "新潟", "福島", "小倉", "札幌", "函館"}
	horses = []string{
		"イクイノックス", "ドウデュース", "リバティアイランド", "ソールオリエンス",
		"タスティエーラ", "スターズオンアース", "ジャスティンパレス", "レモンポップ",
		"ウシュバテソーロ", "セリフォス", "ナミュール", "ママコチャ",
	}
)

// Sheet guarda as linhas geradas; seguro para uso concorrente
type Sheet struct {
	mu   sync.Mutex
	rnd  *rand.Rand
	rows [][]string
	day  time.Time
}

// New gera n corridas em fins de semana a partir de start
func New(seed int64, start time.Time, n int) *Sheet {
	s := &Sheet{rnd: rand.New(rand.NewSource(seed)), day: nextRaceDay(start)}
	for i := 0; i < n; i++ {
		s.appendLocked()
	}
	return s
}

// Append adiciona uma corrida nova (simula alguém preenchendo o formulário)
func (s *Sheet) Append() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.appendLocked()
}

func (s *Sheet) appendLocked() []string {
	// 12 corridas por dia de corrida
	if len(s.rows) > 0 && len(s.rows)%12 == 0 {
		s.day = nextRaceDay(s.day.AddDate(0, 0, 1))
	}
	race := fmt.Sprintf("%s%dR", venues[s.rnd.Intn(len(venues))], len(s.rows)%12+1)
	rank := s.rnd.Intn(8) + 1
	finish := s.rnd.Intn(12) + 1

	payout := ""
	if finish == 1 {
		// rateio aproximado pela popularidade, em múltiplos de 100 ienes
		yen := int64(200*rank+s.rnd.Intn(10*rank+1)*100) * 10
		payout = fmt.Sprintf("%s円", groupThousands(yen))
	}

	row := []string{
		s.day.Add(20 * time.Hour).Format("2006/01/02 15:04:05"),
		s.day.Format("2006/01/02"),
		race,
		horses[s.rnd.Intn(len(horses))],
		fmt.Sprint(rank),
		fmt.Sprint(finish),
		payout,
	}
	s.rows = append(s.rows, row)
	return row
}

// Len retorna quantas corridas existem
func (s *Sheet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

// CSV serializa como a exportação publicada: CRLF, aspas quando necessário
// e uma linha vazia ao final, como o Google Sheets faz com linhas em branco
func (s *Sheet) CSV() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	writeRow(&b, Header)
	for _, r := range s.rows {
		writeRow(&b, r)
	}
	writeRow(&b, make([]string, len(Header)))
	return b.String()
}

func writeRow(b *strings.Builder, row []string) {
	for i, cell := range row {
		if i > 0 {
			b.WriteByte(',')
		}
		if strings.ContainsAny(cell, ",\"\r\n") {
			b.WriteByte('"')
			b.WriteString(strings.ReplaceAll(cell, `"`, `""`))
			b.WriteByte('"')
			continue
		}
		b.WriteString(cell)
	}
	b.WriteString("\r\n")
}

// nextRaceDay avança até o próximo sábado ou domingo
func nextRaceDay(t time.Time) time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

func groupThousands(n int64) string {
	s := fmt.Sprint(n)
	var out []byte
	for i := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, s[i])
	}
	return string(out)
}
