package catalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"

	"setuptrack/infrastructure/jsonstore"
	"setuptrack/models"
)

// Store owns qrcodes.json: the mapping from QR codes to cells and the nested
// product/item catalog per cell. All access goes through a single lock; the
// file is rewritten whole on every mutation.
type Store struct {
	path string
	mu   sync.RWMutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

func (s *Store) load() map[string]models.CatalogEntry {
	entries := make(map[string]models.CatalogEntry)
	jsonstore.ReadFile(s.path, &entries)
	return entries
}

func (s *Store) save(entries map[string]models.CatalogEntry) error {
	return jsonstore.WriteFile(s.path, entries)
}

// ResolveCell maps a scanned QR code to its cell. Lookup tries the raw code,
// then the trimmed code, then a numeric comparison so that codes scanned with
// or without leading zeros still resolve.
func (s *Store) ResolveCell(qrCode string) (models.CellInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.load()

	if entry, ok := entries[qrCode]; ok {
		return cellInfo(qrCode, entry), true
	}

	trimmed := strings.TrimSpace(qrCode)
	if entry, ok := entries[trimmed]; ok {
		return cellInfo(trimmed, entry), true
	}

	if n, err := strconv.Atoi(trimmed); err == nil {
		for code, entry := range entries {
			if m, err := strconv.Atoi(strings.TrimSpace(code)); err == nil && m == n {
				return cellInfo(code, entry), true
			}
		}
	}
	return models.CellInfo{}, false
}

// ListCells returns every registered cell ordered by QR code.
func (s *Store) ListCells() []models.CellInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.load()

	out := make([]models.CellInfo, 0, len(entries))
	for code, entry := range entries {
		out = append(out, cellInfo(code, entry))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QRCode < out[j].QRCode })
	return out
}

// GetCellProducts finds the product list for a cell. The key may be a QR code
// or a cell name; matching falls back from direct key to exact name to a
// substring match in either direction. A stage only wins when it yields a
// non-empty product list, so a structured entry with products beats a legacy
// or empty one with a closer name.
func (s *Store) GetCellProducts(key string) ([]models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.load()

	if entry, ok := entries[key]; ok && len(entry.Products) > 0 {
		return entry.Products, true
	}
	for _, entry := range entries {
		if entry.CellName == key && len(entry.Products) > 0 {
			return entry.Products, true
		}
	}
	for _, entry := range entries {
		if entry.CellName == "" {
			continue
		}
		if strings.Contains(entry.CellName, key) || strings.Contains(key, entry.CellName) {
			if len(entry.Products) > 0 {
				return entry.Products, true
			}
		}
	}
	return nil, false
}

// GetProductItems returns the items of one product within a cell. Unlike
// GetCellProducts the cell match does not require a non-empty product list.
func (s *Store) GetProductItems(key, productCode string) ([]models.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := s.load()

	entry, ok := findEntry(entries, key)
	if !ok {
		return nil, false
	}
	for _, p := range entry.Products {
		if p.Code == productCode {
			if p.Items == nil {
				return []models.Item{}, true
			}
			return p.Items, true
		}
	}
	return nil, false
}

// UpsertProduct adds or replaces a product on the cell with the exact name.
// Legacy bare-string entries are not eligible; the first bool reports whether
// a matching cell was found.
func (s *Store) UpsertProduct(cellName string, product models.Product) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.load()

	for code, entry := range entries {
		if entry.Legacy || entry.CellName != cellName {
			continue
		}
		replaced := false
		for i, p := range entry.Products {
			if p.Code == product.Code {
				entry.Products[i] = product
				replaced = true
				break
			}
		}
		if !replaced {
			entry.Products = append(entry.Products, product)
		}
		entries[code] = entry
		return true, s.save(entries)
	}
	return false, nil
}

// RemoveProduct deletes a product from the cell with the exact name.
func (s *Store) RemoveProduct(cellName, productCode string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.load()

	for code, entry := range entries {
		if entry.Legacy || entry.CellName != cellName {
			continue
		}
		for i, p := range entry.Products {
			if p.Code == productCode {
				entry.Products = append(entry.Products[:i], entry.Products[i+1:]...)
				entries[code] = entry
				return true, s.save(entries)
			}
		}
		return false, nil
	}
	return false, nil
}

// UpsertItem adds or replaces an item under a product of the named cell.
func (s *Store) UpsertItem(cellName, productCode string, item models.Item) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.load()

	for code, entry := range entries {
		if entry.Legacy || entry.CellName != cellName {
			continue
		}
		for i, p := range entry.Products {
			if p.Code != productCode {
				continue
			}
			replaced := false
			for j, it := range p.Items {
				if it.Code == item.Code {
					p.Items[j] = item
					replaced = true
					break
				}
			}
			if !replaced {
				p.Items = append(p.Items, item)
			}
			entry.Products[i] = p
			entries[code] = entry
			return true, s.save(entries)
		}
		return false, nil
	}
	return false, nil
}

// RemoveItem deletes an item from a product of the named cell.
func (s *Store) RemoveItem(cellName, productCode, itemCode string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.load()

	for code, entry := range entries {
		if entry.Legacy || entry.CellName != cellName {
			continue
		}
		for i, p := range entry.Products {
			if p.Code != productCode {
				continue
			}
			for j, it := range p.Items {
				if it.Code == itemCode {
					p.Items = append(p.Items[:j], p.Items[j+1:]...)
					entry.Products[i] = p
					entries[code] = entry
					return true, s.save(entries)
				}
			}
			return false, nil
		}
		return false, nil
	}
	return false, nil
}

// Register binds a QR code to a cell name, overwriting any existing entry for
// that code including its product catalog.
func (s *Store) Register(qrCode, cellName string) error {
	qrCode = strings.TrimSpace(qrCode)
	cellName = strings.TrimSpace(cellName)
	if qrCode == "" || cellName == "" {
		return fmt.Errorf("qr code and cell name are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.load()
	entries[qrCode] = models.CatalogEntry{CellName: cellName, Products: []models.Product{}}
	return s.save(entries)
}

// UpdateCode renames the cell behind a QR code. A legacy entry is upgraded to
// the structured shape in the process.
func (s *Store) UpdateCode(qrCode, cellName string) (bool, error) {
	cellName = strings.TrimSpace(cellName)
	if cellName == "" {
		return false, fmt.Errorf("cell name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.load()

	entry, ok := entries[qrCode]
	if !ok {
		return false, nil
	}
	entry.CellName = cellName
	entry.Legacy = false
	if entry.Products == nil {
		entry.Products = []models.Product{}
	}
	entries[qrCode] = entry
	return true, s.save(entries)
}

// Delete removes a QR code registration and its catalog.
func (s *Store) Delete(qrCode string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.load()

	if _, ok := entries[qrCode]; !ok {
		return false, nil
	}
	delete(entries, qrCode)
	return true, s.save(entries)
}

// MigrateLegacyFormat rewrites bare-string entries into the structured shape
// with an empty product list. Returns how many entries were upgraded; running
// it on a migrated file is a no-op.
func (s *Store) MigrateLegacyFormat() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.load()

	migrated := 0
	for code, entry := range entries {
		if !entry.Legacy {
			continue
		}
		entry.Legacy = false
		entry.Products = []models.Product{}
		entries[code] = entry
		migrated++
	}
	if migrated == 0 {
		return 0, nil
	}
	return migrated, s.save(entries)
}

func findEntry(entries map[string]models.CatalogEntry, key string) (models.CatalogEntry, bool) {
	if entry, ok := entries[key]; ok {
		return entry, true
	}
	for _, entry := range entries {
		if entry.CellName == key {
			return entry, true
		}
	}
	for _, entry := range entries {
		if entry.CellName == "" {
			continue
		}
		if strings.Contains(entry.CellName, key) || strings.Contains(key, entry.CellName) {
			return entry, true
		}
	}
	return models.CatalogEntry{}, false
}

func cellInfo(code string, entry models.CatalogEntry) models.CellInfo {
	return models.CellInfo{
		QRCode:       code,
		CellName:     entry.CellName,
		ProductCount: len(entry.Products),
	}
}
