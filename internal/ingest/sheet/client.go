// Package sheet busca a exportação CSV publicada da planilha de apostas.
package sheet

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/radieske/keiba-roi-dashboard/internal/roi/csvparse"
)

// FetchError indica que a planilha respondeu com status fora da faixa 2xx
type FetchError struct {
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("sheet fetch http %d", e.StatusCode)
}

type Client struct {
	URL  string
	HTTP *http.Client
	now  func() time.Time
}

func New(csvURL string, timeout time.Duration) *Client {
	return &Client{
		URL:  csvURL,
		HTTP: &http.Client{Timeout: timeout},
		now:  time.Now,
	}
}

func (c *Client) Name() string { return "sheet" }

// Table baixa o CSV e devolve as linhas cruas (cabeçalho incluso)
func (c *Client) Table(ctx context.Context) ([][]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.bustedURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("build sheet request: %w", err)
	}
	req.Header.Set("Accept", "text/csv")

	res, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return nil, &FetchError{StatusCode: res.StatusCode}
	}

	// remove BOM UTF-8 e decodifica exportações UTF-16 com BOM
	dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	table, err := csvparse.ParseReader(transform.NewReader(res.Body, dec))
	if err != nil {
		return nil, fmt.Errorf("read sheet body: %w", err)
	}
	return table, nil
}

// bustedURL acrescenta t=<unix millis> para furar caches intermediários
func (c *Client) bustedURL() string {
	now := time.Now
	if c.now != nil {
		now = c.now
	}
	sep := "?"
	if strings.Contains(c.URL, "?") {
		sep = "&"
	}
	return c.URL + sep + "t=" + url.QueryEscape(strconv.FormatInt(now().UnixMilli(), 10))
}
