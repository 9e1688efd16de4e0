// Package menu читает каталог блюд из JSON-файла и форматирует его для вывода.
// Каталог используется только оболочками (CLI и HTTP), ядро броней его не читает.
package menu

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// ErrMenuUnavailable возвращается, если каталог не удалось прочитать или разобрать.
var ErrMenuUnavailable = errors.New("menu unavailable")

// Item описывает позицию каталога.
type Item struct {
	Name     string
	Price    float64
	ImageRef string
}

type itemRecord struct {
	Nombre string  `json:"nombre"`
	Precio float64 `json:"precio"`
	Imagen string  `json:"imagen"`
}

// Catalog хранит позиции меню в порядке файла.
type Catalog struct {
	items []Item
}

// LoadFile читает каталог из файла.
func LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMenuUnavailable, err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode разбирает JSON-массив позиций {"nombre", "precio", "imagen"}.
func Decode(r io.Reader) (*Catalog, error) {
	var records []itemRecord
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMenuUnavailable, err)
	}

	items := make([]Item, 0, len(records))
	for i, rec := range records {
		name := strings.TrimSpace(rec.Nombre)
		if name == "" {
			return nil, fmt.Errorf("%w: item %d has no name", ErrMenuUnavailable, i)
		}
		if rec.Precio < 0 {
			return nil, fmt.Errorf("%w: item %q has negative price", ErrMenuUnavailable, name)
		}
		items = append(items, Item{Name: name, Price: rec.Precio, ImageRef: rec.Imagen})
	}

	return &Catalog{items: items}, nil
}

// Items возвращает копию позиций в порядке файла.
func (c *Catalog) Items() []Item {
	if c == nil {
		return nil
	}
	return append([]Item(nil), c.items...)
}

// Lookup ищет позицию по точному названию.
func (c *Catalog) Lookup(name string) (Item, bool) {
	if c == nil {
		return Item{}, false
	}
	for _, item := range c.items {
		if item.Name == name {
			return item, true
		}
	}
	return Item{}, false
}

// Label форматирует позицию как "Taco - $25".
func (i Item) Label() string {
	return fmt.Sprintf("%s - $%s", i.Name, strconv.FormatFloat(i.Price, 'f', -1, 64))
}

// Render возвращает подписи всех позиций.
func (c *Catalog) Render() []string {
	items := c.Items()
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, item.Label())
	}
	return lines
}
