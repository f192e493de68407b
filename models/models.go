package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

// Item belongs to exactly one product's item list.
type Item struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Product belongs to exactly one catalog entry's product list. Item codes are
// unique within a product; re-adding a code updates the name in place.
type Product struct {
	Code  string `json:"code"`
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// CatalogEntry is one value of qrcodes.json, keyed by QR code. Old installs
// stored a bare cell-name string; Legacy tracks that shape so an entry that
// was read as legacy is written back as legacy until it is explicitly
// migrated or mutated.
type CatalogEntry struct {
	CellName string    `json:"cell_name"`
	Products []Product `json:"products"`

	Legacy bool `json:"-"`
}

func (e *CatalogEntry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return err
		}
		*e = CatalogEntry{CellName: name, Legacy: true}
		return nil
	}

	type structured CatalogEntry
	var s structured
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*e = CatalogEntry(s)
	return nil
}

func (e CatalogEntry) MarshalJSON() ([]byte, error) {
	if e.Legacy {
		return json.Marshal(e.CellName)
	}
	type structured CatalogEntry
	s := structured(e)
	if s.Products == nil {
		s.Products = []Product{}
	}
	return json.Marshal(s)
}

// CellInfo is one row of the cell listing.
type CellInfo struct {
	QRCode       string `json:"qrcode"`
	CellName     string `json:"cell_name"`
	ProductCount int    `json:"product_count"`
}

// LooseBool unmarshals legacy records that stored booleans as strings
// ("true", "yes", "1", "on") or numbers. It always marshals as a plain bool.
type LooseBool bool

func (b *LooseBool) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		*b = false
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*b = ParseLooseBool(s)
		return nil
	}
	if n, err := strconv.ParseFloat(string(trimmed), 64); err == nil {
		*b = n != 0
		return nil
	}
	var v bool
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*b = LooseBool(v)
	return nil
}

func (b LooseBool) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}

func (b LooseBool) Bool() bool { return bool(b) }

// ParseLooseBool interprets the truthy strings form submissions and legacy
// records use.
func ParseLooseBool(s string) LooseBool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "on":
		return true
	}
	return false
}

// SelectedItem is one item chosen on a supply submission, with its optional
// supplier purchase order.
type SelectedItem struct {
	Code string `json:"code"`
	Name string `json:"name"`
	PO   string `json:"po,omitempty"`
}

// ImageRef points at one stored photo; Path is relative to the cell directory.
type ImageRef struct {
	Filename string `json:"filename"`
	Path     string `json:"path"`
}

// SetupRecord is one persisted setup event, stored as
// <cell>/<order>_<type>_<timestamp>.txt.
type SetupRecord struct {
	OrderNumber       string         `json:"order_number"`
	SupplierName      string         `json:"supplier_name"`
	Timestamp         string         `json:"timestamp"`
	Observation       string         `json:"observation"`
	VerificationCheck LooseBool      `json:"verification_check"`
	SetupType         string         `json:"setup_type"`
	Audited           LooseBool      `json:"audited"`
	AuditorName       string         `json:"auditor_name,omitempty"`
	AuditNotes        string         `json:"audit_notes,omitempty"`
	AuditTimestamp    string         `json:"audit_timestamp,omitempty"`
	ProductCode       string         `json:"product_code,omitempty"`
	ProductName       string         `json:"product_name,omitempty"`
	ProductPO         string         `json:"product_po,omitempty"`
	SelectedItems     []SelectedItem `json:"selected_items"`
	Images            []ImageRef     `json:"images"`
	HasImage          bool           `json:"has_image"`
	MainImage         string         `json:"main_image,omitempty"`

	// FileIdentifier is derived from the filename on load, never stored.
	FileIdentifier string `json:"file_identifier,omitempty"`
}

// Setup types.
const (
	SetupSupply  = "supply"
	SetupRemoval = "removal"
)

// ResetEvent is one row of <cell>/resets/reset_history.json.
type ResetEvent struct {
	Timestamp string `json:"timestamp"`
	Reason    string `json:"reason"`
	User      string `json:"user"`
	File      string `json:"file"`
}

// ResetState snapshots which setup types existed when a reset was taken.
type ResetState struct {
	HadRemoval bool `json:"had_removal"`
	HadSupply  bool `json:"had_supply"`
}

// ResetDetail is the individual checkpoint file written alongside the
// history append.
type ResetDetail struct {
	CellName       string     `json:"cell_name"`
	ResetTimestamp string     `json:"reset_timestamp"`
	ResetReason    string     `json:"reset_reason"`
	ResetBy        string     `json:"reset_by"`
	PreviousState  ResetState `json:"previous_state"`
}

// User profiles.
const (
	ProfileAuditor  = "auditor"
	ProfileSupplier = "supplier"
)

// User is one entry of users.json. Password holds the argon2id hash.
type User struct {
	Username    string `json:"username"`
	Password    string `json:"password"`
	Profile     string `json:"profile"`
	LastUpdated string `json:"last_updated,omitempty"`
}

// Session is issued on login and persisted in sqlite so logins survive a
// restart. The user itself lives in users.json, so the row carries username
// and profile directly.
type Session struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	ID                string         `bun:"id,pk"`
	Username          string         `bun:"username,notnull"`
	Profile           string         `bun:"profile,notnull"`
	ScreenPermissions map[string]int `bun:"-"`
	ExpiresAt         time.Time      `bun:"expires_at,notnull"`
	CreatedAt         time.Time      `bun:"created_at,notnull,default:current_timestamp"`
}

// Expired returns true when the session expiry time has passed.
func (s Session) Expired() bool {
	return time.Now().After(s.ExpiresAt)
}

// AuditLog captures immutable change history for mutating operations.
type AuditLog struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`

	ID         int64     `bun:"id,pk,autoincrement"`
	Username   string    `bun:"username,notnull"`
	Action     string    `bun:"action,notnull"`
	EntityType string    `bun:"entity_type,notnull"`
	EntityID   string    `bun:"entity_id,notnull"`
	BeforeJSON string    `bun:"before_json"`
	AfterJSON  string    `bun:"after_json"`
	CreatedAt  time.Time `bun:"created_at,notnull,default:current_timestamp"`
}
