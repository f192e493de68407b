package setuplog

import (
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"setuptrack/infrastructure/imaging"
	"setuptrack/infrastructure/jsonstore"
	"setuptrack/models"
)

// Timestamp layouts. Both are fixed width, so lexicographic order on the
// encoded strings equals chronological order. Reset history swaps the
// underscore for a space.
const (
	TimestampLayout      = "2006-01-02_15-04-05"
	ResetTimestampLayout = "2006-01-02 15-04-05"
	AuditTimestampLayout = "2006-01-02 15:04:05"
)

const resetsDirName = "resets"

// Store owns the per-cell setup directories under dataDir. Each cell is a
// directory of <order>_<type>_<timestamp>.txt records with an image directory
// per record and a resets/ subdirectory of checkpoints.
type Store struct {
	dataDir string

	mu    sync.Mutex
	cells map[string]*sync.Mutex

	now func() time.Time
}

func NewStore(dataDir string) *Store {
	return &Store{
		dataDir: dataDir,
		cells:   make(map[string]*sync.Mutex),
		now:     time.Now,
	}
}

// cellLock returns the mutex serializing access to one cell directory.
func (s *Store) cellLock(cellName string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.cells[cellName]
	if !ok {
		l = &sync.Mutex{}
		s.cells[cellName] = l
	}
	return l
}

func (s *Store) cellDir(cellName string) string {
	return filepath.Join(s.dataDir, cellName)
}

// CreateInput carries one setup submission. Photos are base64 payloads,
// optionally prefixed with a data URL header.
type CreateInput struct {
	CellName          string
	OrderNumber       string
	SupplierName      string
	Observation       string
	VerificationCheck bool
	SetupType         string
	ProductCode       string
	ProductName       string
	ProductPO         string
	SelectedItems     []models.SelectedItem
	Photos            []string
}

// CreateSetup appends a new setup record for the cell. Photo failures are
// logged and skipped so a bad image never loses the submission.
func (s *Store) CreateSetup(in CreateInput) error {
	if in.CellName == "" || in.OrderNumber == "" || in.SupplierName == "" {
		return fmt.Errorf("cell, order number and supplier name are required")
	}
	if in.SetupType != models.SetupSupply && in.SetupType != models.SetupRemoval {
		return fmt.Errorf("invalid setup type %q", in.SetupType)
	}

	lock := s.cellLock(in.CellName)
	lock.Lock()
	defer lock.Unlock()

	cellDir := s.cellDir(in.CellName)
	if err := jsonstore.EnsureDir(cellDir); err != nil {
		return fmt.Errorf("ensure cell dir: %w", err)
	}

	timestamp := s.now().Format(TimestampLayout)
	identifier := fmt.Sprintf("%s_%s_%s", in.OrderNumber, in.SetupType, timestamp)

	record := models.SetupRecord{
		OrderNumber:       in.OrderNumber,
		SupplierName:      in.SupplierName,
		Timestamp:         timestamp,
		Observation:       in.Observation,
		VerificationCheck: models.LooseBool(in.VerificationCheck),
		SetupType:         in.SetupType,
		Images:            []models.ImageRef{},
		SelectedItems:     []models.SelectedItem{},
	}

	// Product and item details only apply to supply setups.
	if in.SetupType == models.SetupSupply && in.ProductCode != "" && in.ProductName != "" {
		record.ProductCode = in.ProductCode
		record.ProductName = in.ProductName
		record.ProductPO = in.ProductPO
		if in.SelectedItems != nil {
			record.SelectedItems = in.SelectedItems
		}
	}

	if len(in.Photos) > 0 {
		imagesDir := filepath.Join(cellDir, identifier)
		if err := jsonstore.EnsureDir(imagesDir); err != nil {
			return fmt.Errorf("ensure images dir: %w", err)
		}
		for i, payload := range in.Photos {
			filename := fmt.Sprintf("image_%d.jpg", i+1)
			raw, err := imaging.FromDataURL(payload)
			if err == nil {
				var processed []byte
				processed, err = imaging.Process(raw)
				if err == nil {
					err = os.WriteFile(filepath.Join(imagesDir, filename), processed, 0o644)
				}
			}
			if err != nil {
				slog.Error("saving setup photo failed",
					slog.String("cell", in.CellName),
					slog.String("identifier", identifier),
					slog.Int("photo", i+1),
					slog.Any("err", err))
				continue
			}
			record.Images = append(record.Images, models.ImageRef{
				Filename: filename,
				Path:     path.Join(identifier, filename),
			})
		}
		record.HasImage = len(record.Images) > 0
		if record.HasImage {
			record.MainImage = record.Images[0].Path
		}
	}

	if err := jsonstore.WriteFile(filepath.Join(cellDir, identifier+".txt"), record); err != nil {
		return fmt.Errorf("save setup record: %w", err)
	}
	return nil
}

// UpdateInput is a field mask over one setup record; nil pointers leave the
// stored value alone. Photo replaces the record's photo in the legacy flat
// file shape.
type UpdateInput struct {
	CellName    string
	OrderNumber string
	SetupType   string

	SupplierName      *string
	Observation       *string
	VerificationCheck *bool
	Timestamp         *string
	Audited           *bool
	AuditorName       *string
	AuditNotes        *string
	Photo             string
}

// UpdateSetup rewrites the most recent record matching the order (and type,
// when given). Returns false when no record matches. Setting Audited stamps
// or clears the audit timestamp.
func (s *Store) UpdateSetup(in UpdateInput) (bool, error) {
	if in.CellName == "" || in.OrderNumber == "" {
		return false, fmt.Errorf("cell and order number are required")
	}

	lock := s.cellLock(in.CellName)
	lock.Lock()
	defer lock.Unlock()

	cellDir := s.cellDir(in.CellName)
	entries, err := os.ReadDir(cellDir)
	if err != nil {
		return false, nil
	}

	prefix := in.OrderNumber + "_"
	if in.SetupType != "" {
		prefix = fmt.Sprintf("%s_%s", in.OrderNumber, in.SetupType)
	}

	var matches []string
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasSuffix(name, ".txt") && strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	if len(matches) == 0 {
		return false, nil
	}

	// Timestamps in filenames are fixed width, so the lexicographically last
	// match is the most recent record.
	sort.Strings(matches)
	target := filepath.Join(cellDir, matches[len(matches)-1])

	var record models.SetupRecord
	if !jsonstore.ReadFile(target, &record) {
		return false, fmt.Errorf("read setup record %s", matches[len(matches)-1])
	}

	if in.SupplierName != nil {
		record.SupplierName = *in.SupplierName
	}
	if in.Observation != nil {
		record.Observation = *in.Observation
	}
	if in.VerificationCheck != nil {
		record.VerificationCheck = models.LooseBool(*in.VerificationCheck)
	}
	if in.Timestamp != nil && *in.Timestamp != "" {
		record.Timestamp = *in.Timestamp
	}
	if in.Audited != nil {
		record.Audited = models.LooseBool(*in.Audited)
		if *in.Audited {
			record.AuditTimestamp = s.now().Format(AuditTimestampLayout)
		} else {
			record.AuditTimestamp = ""
		}
	}
	if in.AuditorName != nil {
		record.AuditorName = *in.AuditorName
	}
	if in.AuditNotes != nil {
		record.AuditNotes = *in.AuditNotes
	}
	if in.SetupType != "" && record.SetupType == "" {
		record.SetupType = in.SetupType
	}

	if in.Photo != "" {
		setupType := record.SetupType
		if setupType == "" {
			setupType = models.SetupSupply
		}
		raw, err := imaging.FromDataURL(in.Photo)
		if err == nil {
			var processed []byte
			processed, err = imaging.Process(raw)
			if err == nil {
				flat := filepath.Join(cellDir, fmt.Sprintf("%s_%s.jpg", in.OrderNumber, setupType))
				err = os.WriteFile(flat, processed, 0o644)
			}
		}
		if err != nil {
			slog.Error("saving replacement photo failed",
				slog.String("cell", in.CellName),
				slog.String("order", in.OrderNumber),
				slog.Any("err", err))
		} else {
			record.HasImage = true
		}
	}

	record.FileIdentifier = ""
	if err := jsonstore.WriteFile(target, record); err != nil {
		return false, fmt.Errorf("save setup record: %w", err)
	}
	return true, nil
}

// DeleteSetup removes every record file matching order+type together with its
// image directory and the legacy flat photo. Returns false when nothing
// matched.
func (s *Store) DeleteSetup(cellName, orderNumber, setupType string) (bool, error) {
	if cellName == "" || orderNumber == "" || setupType == "" {
		return false, fmt.Errorf("cell, order number and setup type are required")
	}

	lock := s.cellLock(cellName)
	lock.Lock()
	defer lock.Unlock()

	cellDir := s.cellDir(cellName)
	entries, err := os.ReadDir(cellDir)
	if err != nil {
		return false, nil
	}

	prefix := fmt.Sprintf("%s_%s", orderNumber, setupType)
	deleted := false
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") || !strings.HasPrefix(name, prefix) {
			continue
		}
		base := strings.TrimSuffix(name, ".txt")

		if err := os.Remove(filepath.Join(cellDir, name)); err != nil {
			slog.Error("delete setup record failed", slog.String("file", name), slog.Any("err", err))
		} else {
			deleted = true
		}
		if err := os.RemoveAll(filepath.Join(cellDir, base)); err != nil {
			slog.Error("delete image dir failed", slog.String("dir", base), slog.Any("err", err))
		}
		flat := filepath.Join(cellDir, base+".jpg")
		if _, err := os.Stat(flat); err == nil {
			if err := os.Remove(flat); err != nil {
				slog.Error("delete flat photo failed", slog.String("file", flat), slog.Any("err", err))
			}
		}
	}
	return deleted, nil
}

// ListAllSetups returns every setup record grouped by cell. Records are
// normalized on the way out: the setup type is recovered from the filename
// when missing, file_identifier is filled in and image references are
// backfilled from the legacy flat photo or the image directory.
func (s *Store) ListAllSetups() map[string][]models.SetupRecord {
	out := make(map[string][]models.SetupRecord)

	entries, err := os.ReadDir(s.dataDir)
	if err != nil {
		return out
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		cellName := entry.Name()
		out[cellName] = s.listCellSetups(cellName)
	}
	return out
}

func (s *Store) listCellSetups(cellName string) []models.SetupRecord {
	lock := s.cellLock(cellName)
	lock.Lock()
	defer lock.Unlock()

	cellDir := s.cellDir(cellName)
	entries, err := os.ReadDir(cellDir)
	if err != nil {
		return []models.SetupRecord{}
	}

	records := []models.SetupRecord{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") || strings.HasPrefix(name, "reset_") {
			continue
		}
		base := strings.TrimSuffix(name, ".txt")

		var record models.SetupRecord
		if !jsonstore.ReadFile(filepath.Join(cellDir, name), &record) {
			continue
		}
		if record.SetupType == "" {
			_, record.SetupType = parseIdentifier(base)
		}
		record.FileIdentifier = base
		s.backfillImages(cellDir, base, &record)
		if record.SelectedItems == nil {
			record.SelectedItems = []models.SelectedItem{}
		}
		records = append(records, record)
	}
	return records
}

// backfillImages reconciles a record's image references with what is actually
// on disk, covering the legacy flat-photo and bare-directory shapes.
func (s *Store) backfillImages(cellDir, base string, record *models.SetupRecord) {
	if len(record.Images) > 0 {
		record.HasImage = true
		record.MainImage = record.Images[0].Path
		return
	}

	flat := base + ".jpg"
	if _, err := os.Stat(filepath.Join(cellDir, flat)); err == nil {
		record.HasImage = true
		record.Images = []models.ImageRef{{Filename: flat, Path: flat}}
		record.MainImage = flat
		return
	}

	imagesDir := filepath.Join(cellDir, base)
	if files, err := os.ReadDir(imagesDir); err == nil {
		refs := []models.ImageRef{}
		for _, f := range files {
			if f.IsDir() || !isImageName(f.Name()) {
				continue
			}
			refs = append(refs, models.ImageRef{
				Filename: f.Name(),
				Path:     path.Join(base, f.Name()),
			})
		}
		if len(refs) > 0 {
			record.HasImage = true
			record.Images = refs
			record.MainImage = refs[0].Path
			return
		}
	}

	record.HasImage = false
	record.Images = []models.ImageRef{}
	record.MainImage = ""
}

// CheckStatus reports which setup types exist for the order, ignoring records
// written before the cell's most recent reset checkpoint.
func (s *Store) CheckStatus(cellName, orderNumber string) (hasRemoval, hasSupply bool) {
	lock := s.cellLock(cellName)
	lock.Lock()
	defer lock.Unlock()

	cellDir := s.cellDir(cellName)
	lastReset, haveReset := s.lastResetTime(cellDir)

	entries, err := os.ReadDir(cellDir)
	if err != nil {
		return false, false
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") || !strings.HasPrefix(name, orderNumber+"_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if haveReset && info.ModTime().Before(lastReset) {
			continue
		}
		var record models.SetupRecord
		if !jsonstore.ReadFile(filepath.Join(cellDir, name), &record) {
			continue
		}
		switch record.SetupType {
		case models.SetupRemoval:
			hasRemoval = true
		case models.SetupSupply:
			hasSupply = true
		}
	}
	return hasRemoval, hasSupply
}

// Overview summarizes a cell for the setup screen: the most recent order and
// which setup types it already has, reset checkpoints respected.
type Overview struct {
	CellName        string `json:"cell_name"`
	MostRecentOrder string `json:"most_recent_order,omitempty"`
	HasRemoval      bool   `json:"has_removal"`
	HasSupply       bool   `json:"has_supply"`
}

// CellOverview scans the cell for its highest order number among records
// newer than the last reset and reports that order's setup status.
func (s *Store) CellOverview(cellName string) Overview {
	lock := s.cellLock(cellName)
	lock.Lock()
	defer lock.Unlock()

	overview := Overview{CellName: cellName}
	cellDir := s.cellDir(cellName)
	lastReset, haveReset := s.lastResetTime(cellDir)

	entries, err := os.ReadDir(cellDir)
	if err != nil {
		return overview
	}

	type setupFile struct {
		order     string
		setupType string
	}
	var files []setupFile
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") || strings.HasPrefix(name, "reset_") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if haveReset && info.ModTime().Before(lastReset) {
			continue
		}
		var record models.SetupRecord
		if !jsonstore.ReadFile(filepath.Join(cellDir, name), &record) {
			continue
		}
		if record.OrderNumber != "" && record.OrderNumber > overview.MostRecentOrder {
			overview.MostRecentOrder = record.OrderNumber
		}
		files = append(files, setupFile{order: record.OrderNumber, setupType: record.SetupType})
	}

	if overview.MostRecentOrder == "" {
		return overview
	}
	for _, f := range files {
		if f.order != overview.MostRecentOrder {
			continue
		}
		switch f.setupType {
		case models.SetupRemoval:
			overview.HasRemoval = true
		case models.SetupSupply:
			overview.HasSupply = true
		}
	}
	return overview
}

// SetupImages lists the stored photos of a setup as paths relative to the
// cell directory, dedicated image directories first, then legacy flat files.
func (s *Store) SetupImages(cellName, orderNumber, setupType string) []string {
	lock := s.cellLock(cellName)
	lock.Lock()
	defer lock.Unlock()

	cellDir := s.cellDir(cellName)
	entries, err := os.ReadDir(cellDir)
	if err != nil {
		return nil
	}

	needle := fmt.Sprintf("%s_%s", orderNumber, setupType)
	for _, entry := range entries {
		if !entry.IsDir() || !strings.Contains(entry.Name(), needle) {
			continue
		}
		files, err := os.ReadDir(filepath.Join(cellDir, entry.Name()))
		if err != nil {
			continue
		}
		var images []string
		for _, f := range files {
			if !f.IsDir() && isImageName(f.Name()) {
				images = append(images, path.Join(entry.Name(), f.Name()))
			}
		}
		if len(images) > 0 {
			sort.Strings(images)
			return images
		}
	}

	var direct []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !isImageName(name) || !strings.Contains(name, orderNumber) {
			continue
		}
		direct = append(direct, name)
	}
	sort.Strings(direct)
	return direct
}

// PhotoPath resolves a photo reference to an absolute path, rejecting
// anything that escapes the cell directory.
func (s *Store) PhotoPath(cellName, relPath string) (string, error) {
	cellDir, err := filepath.Abs(s.cellDir(cellName))
	if err != nil {
		return "", err
	}
	full, err := filepath.Abs(filepath.Join(cellDir, filepath.FromSlash(relPath)))
	if err != nil {
		return "", err
	}
	if full != cellDir && !strings.HasPrefix(full, cellDir+string(filepath.Separator)) {
		return "", fmt.Errorf("photo path escapes cell directory")
	}
	info, err := os.Stat(full)
	if err != nil || info.IsDir() {
		return "", fmt.Errorf("photo not found")
	}
	return full, nil
}

// ResetCellFlow writes a reset checkpoint for the cell: a detail file
// snapshotting which setup types existed, plus an append to the history log.
// Existing setup records are left untouched. Reasons starting with "auto:"
// mark the checkpoint as automatic.
func (s *Store) ResetCellFlow(cellName, reason, user string) error {
	if cellName == "" || reason == "" {
		return fmt.Errorf("cell and reason are required")
	}

	lock := s.cellLock(cellName)
	lock.Lock()
	defer lock.Unlock()

	cellDir := s.cellDir(cellName)
	resetsDir := filepath.Join(cellDir, resetsDirName)
	if err := jsonstore.EnsureDir(resetsDir); err != nil {
		return fmt.Errorf("ensure resets dir: %w", err)
	}

	timestamp := s.now().Format(TimestampLayout)
	kind := "manual"
	if strings.HasPrefix(reason, "auto:") {
		kind = "auto"
	}
	resetFilename := fmt.Sprintf("%s_reset_%s.json", kind, timestamp)

	detail := models.ResetDetail{
		CellName:       cellName,
		ResetTimestamp: strings.ReplaceAll(timestamp, "_", " "),
		ResetReason:    reason,
		ResetBy:        user,
	}

	if entries, err := os.ReadDir(cellDir); err == nil {
		for _, entry := range entries {
			name := entry.Name()
			if entry.IsDir() || !strings.HasSuffix(name, ".txt") || strings.HasPrefix(name, "reset_") {
				continue
			}
			var record models.SetupRecord
			if !jsonstore.ReadFile(filepath.Join(cellDir, name), &record) {
				continue
			}
			switch record.SetupType {
			case models.SetupRemoval:
				detail.PreviousState.HadRemoval = true
			case models.SetupSupply:
				detail.PreviousState.HadSupply = true
			}
		}
	}

	if err := jsonstore.WriteFile(filepath.Join(resetsDir, resetFilename), detail); err != nil {
		return fmt.Errorf("save reset checkpoint: %w", err)
	}

	historyPath := filepath.Join(resetsDir, "reset_history.json")
	history := []models.ResetEvent{}
	jsonstore.ReadFile(historyPath, &history)
	history = append(history, models.ResetEvent{
		Timestamp: strings.ReplaceAll(timestamp, "_", " "),
		Reason:    reason,
		User:      user,
		File:      resetFilename,
	})
	if err := jsonstore.WriteFile(historyPath, history); err != nil {
		return fmt.Errorf("save reset history: %w", err)
	}
	return nil
}

// ResetHistory returns the cell's reset events, most recent first.
func (s *Store) ResetHistory(cellName string) []models.ResetEvent {
	lock := s.cellLock(cellName)
	lock.Lock()
	defer lock.Unlock()

	history := []models.ResetEvent{}
	jsonstore.ReadFile(filepath.Join(s.cellDir(cellName), resetsDirName, "reset_history.json"), &history)
	sort.Slice(history, func(i, j int) bool { return history[i].Timestamp > history[j].Timestamp })
	return history
}

// lastResetTime returns the most recent reset checkpoint time for the cell,
// false when the cell has never been reset.
func (s *Store) lastResetTime(cellDir string) (time.Time, bool) {
	history := []models.ResetEvent{}
	if !jsonstore.ReadFile(filepath.Join(cellDir, resetsDirName, "reset_history.json"), &history) {
		return time.Time{}, false
	}
	latest := ""
	for _, ev := range history {
		if ev.Timestamp > latest {
			latest = ev.Timestamp
		}
	}
	if latest == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(ResetTimestampLayout, latest, time.Local)
	if err != nil {
		slog.Error("invalid reset timestamp in history", slog.String("timestamp", latest), slog.Any("err", err))
		return time.Time{}, false
	}
	return t, true
}

// parseIdentifier recovers order number and setup type from a record
// basename. The timestamp suffix also contains underscores, so the type is
// found by scanning for a known token rather than splitting from the right.
func parseIdentifier(base string) (orderNumber, setupType string) {
	parts := strings.Split(base, "_")
	for i := len(parts) - 1; i > 0; i-- {
		if parts[i] == models.SetupSupply || parts[i] == models.SetupRemoval {
			return strings.Join(parts[:i], "_"), parts[i]
		}
	}
	return base, models.SetupSupply
}

func isImageName(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return true
	}
	return false
}
