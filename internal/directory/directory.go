// Package directory holds the company name to ticker symbol mapping shown in
// the picker. Rows are ordered by first insertion of a company name.
package directory

import (
	"sync"

	"stocks/internal/stock"
)

// Directory is safe for one writer and many concurrent readers.
type Directory struct {
	mu      sync.RWMutex
	names   []string
	symbols map[string]string // key: company name
}

func New() *Directory {
	return &Directory{symbols: make(map[string]string)}
}

// Merge unions companies into the directory. A name seen again keeps its row
// and takes the newer symbol. Returns the number of rows added.
func (d *Directory) Merge(companies []stock.Company) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	added := 0
	for _, c := range companies {
		if _, ok := d.symbols[c.CompanyName]; !ok {
			d.names = append(d.names, c.CompanyName)
			added++
		}
		d.symbols[c.CompanyName] = c.Symbol
	}
	return added
}

// Len returns the number of rows.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.names)
}

// NameAt returns the company name of a row.
func (d *Directory) NameAt(row int) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if row < 0 || row >= len(d.names) {
		return "", false
	}
	return d.names[row], true
}

// SymbolAt returns the ticker symbol of a row.
func (d *Directory) SymbolAt(row int) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if row < 0 || row >= len(d.names) {
		return "", false
	}
	return d.symbols[d.names[row]], true
}

// Lookup returns the symbol for a company name.
func (d *Directory) Lookup(name string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	s, ok := d.symbols[name]
	return s, ok
}

// Names returns a copy of the company names in row order.
func (d *Directory) Names() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return append([]string(nil), d.names...)
}

// Symbols returns the ticker symbols in row order.
func (d *Directory) Symbols() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.names))
	for i, n := range d.names {
		out[i] = d.symbols[n]
	}
	return out
}
