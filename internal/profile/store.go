package profile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
	"unicode"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNotFound is returned when a profile does not exist in the store.
	ErrNotFound = errors.New("profile not found")

	// ErrInvalidID is returned for ids that are empty or not a plain file name.
	ErrInvalidID = errors.New("invalid profile id")
)

const (
	fileExt         = ".yaml"
	timestampLayout = "2006-01-02 15:04:05"
	dateLayout      = "2006-01-02"
	idStampLayout   = "20060102150405"
)

// Store keeps profiles as one YAML file per profile in a directory.
type Store struct {
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewStore opens the profile directory, creating it if needed. An empty
// directory is seeded with Defaults().
func NewStore(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create profiles directory: %w", err)
	}

	s := &Store{dir: dir, logger: logger, now: time.Now}

	existing, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(existing) == 0 {
		for _, p := range Defaults() {
			p.CreatedAt = s.now().Format(dateLayout)
			if err := s.Save(&p); err != nil {
				return nil, fmt.Errorf("failed to seed profile %s: %w", p.ID, err)
			}
		}
		logger.Info("seeded default profiles", "dir", dir, "count", len(Defaults()))
	}

	return s, nil
}

// Dir returns the directory backing the store.
func (s *Store) Dir() string {
	return s.dir
}

// List returns all readable profiles sorted by name. Files that fail to
// parse are skipped.
func (s *Store) List() ([]Profile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles directory: %w", err)
	}

	var profiles []Profile
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != fileExt {
			continue
		}
		p, err := s.Get(strings.TrimSuffix(e.Name(), fileExt))
		if err != nil {
			s.logger.Debug("skipping unreadable profile", "file", e.Name(), "error", err)
			continue
		}
		profiles = append(profiles, *p)
	}

	sort.SliceStable(profiles, func(i, j int) bool {
		return profiles[i].Name < profiles[j].Name
	})
	return profiles, nil
}

// Get loads a profile by id.
func (s *Store) Get(id string) (*Profile, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", id, err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse profile %s: %w", id, err)
	}
	if p.DocumentType == "" {
		p.DocumentType = DefaultDocumentType
	}
	return &p, nil
}

// Save writes p to the store, stamping UpdatedAt when the profile has a
// creation time.
func (s *Store) Save(p *Profile) error {
	if err := checkID(p.ID); err != nil {
		return err
	}
	if p.CreatedAt != "" {
		p.UpdatedAt = s.now().Format(timestampLayout)
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", p.ID, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", p.ID, err)
	}

	if err := os.WriteFile(s.path(p.ID), buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write profile %s: %w", p.ID, err)
	}
	return nil
}

// Delete removes a profile. Deleting a missing profile is not an error.
func (s *Store) Delete(id string) error {
	if err := checkID(id); err != nil {
		return err
	}
	if err := os.Remove(s.path(id)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete profile %s: %w", id, err)
	}
	return nil
}

// New returns an unsaved, empty profile with a generated id.
func (s *Store) New(name, documentType string) Profile {
	if documentType == "" {
		documentType = DefaultDocumentType
	}
	return Profile{
		ID:           s.generateID(name),
		Name:         name,
		DocumentType: documentType,
		CreatedAt:    s.now().Format(timestampLayout),
	}
}

// Clone returns an unsaved deep copy of src under a new name and id.
func (s *Store) Clone(src Profile, name string) Profile {
	p := Profile{
		ID:           s.generateID(name),
		Name:         name,
		Description:  src.Description,
		DocumentType: src.DocumentType,
		CreatedAt:    s.now().Format(timestampLayout),
		Author:       src.Author,
	}
	if src.Tags != nil {
		p.Tags = append([]string(nil), src.Tags...)
	}
	for _, f := range src.Fields {
		p.Fields = append(p.Fields, f.clone())
	}
	return p
}

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+fileExt)
}

// generateID turns a name into "<slug>_<yyyymmddhhmmss>".
// e.g., "My Receipt" -> "my_receipt_20260314093000"
func (s *Store) generateID(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r == ' ' || r == '　':
			b.WriteRune('_')
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
		}
	}
	return b.String() + "_" + s.now().Format(idStampLayout)
}

func checkID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidID)
	}
	if strings.ContainsAny(id, `/\`) || strings.HasPrefix(id, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}
