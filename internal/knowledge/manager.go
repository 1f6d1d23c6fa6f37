package knowledge

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/terraincognita07/cyclecore/internal/knowledge/catalogs"
	"github.com/terraincognita07/cyclecore/internal/models"
	"gopkg.in/yaml.v3"
)

const (
	LangEN = "en"
	LangTR = "tr"
)

var catalogFilePattern = regexp.MustCompile(`^tips\.([a-zA-Z_-]+)\.yaml$`)

var ErrInvalidCatalog = errors.New("invalid knowledge catalog")

type Catalog struct {
	Version     string             `yaml:"version" json:"version"`
	LastUpdated string             `yaml:"lastUpdated" json:"lastUpdated"`
	Tips        []models.TipRecord `yaml:"tips" json:"tips"`
	FAQ         []models.FAQRecord `yaml:"faq" json:"faq"`
}

type Manager struct {
	defaultLanguage string
	catalogs        map[string]Catalog
	supported       []string
}

// NewManager loads every tips.<lang>.yaml catalog. With an empty overrideDir
// the catalogs built into the binary are used.
func NewManager(defaultLanguage string, overrideDir string) (*Manager, error) {
	source := fs.FS(catalogs.Files)
	if strings.TrimSpace(overrideDir) != "" {
		source = os.DirFS(overrideDir)
	}
	return NewManagerFS(defaultLanguage, source)
}

func NewManagerFS(defaultLanguage string, source fs.FS) (*Manager, error) {
	manager := &Manager{
		catalogs: map[string]Catalog{},
	}

	entries, err := fs.ReadDir(source, ".")
	if err != nil {
		return nil, fmt.Errorf("read catalogs dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := catalogFilePattern.FindStringSubmatch(entry.Name())
		if len(matches) != 2 {
			continue
		}

		language := normalizeLanguageTag(matches[1])
		content, err := fs.ReadFile(source, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", language, err)
		}

		catalog := Catalog{}
		if err := yaml.Unmarshal(content, &catalog); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", language, err)
		}
		if err := validateCatalog(catalog); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", language, err)
		}

		manager.catalogs[language] = catalog
		manager.supported = append(manager.supported, language)
	}

	if len(manager.supported) == 0 {
		return nil, fmt.Errorf("%w: no catalogs found", ErrInvalidCatalog)
	}
	if _, ok := manager.catalogs[LangEN]; !ok {
		return nil, fmt.Errorf("%w: required catalog %q missing", ErrInvalidCatalog, LangEN)
	}

	sort.Strings(manager.supported)
	manager.defaultLanguage = LangEN
	manager.defaultLanguage = manager.NormalizeLanguage(defaultLanguage)
	return manager, nil
}

func validateCatalog(catalog Catalog) error {
	if len(catalog.Tips) == 0 {
		return fmt.Errorf("%w: no tips", ErrInvalidCatalog)
	}
	seen := make(map[string]struct{}, len(catalog.Tips))
	for index, tip := range catalog.Tips {
		id := strings.TrimSpace(tip.ID)
		if id == "" {
			return fmt.Errorf("%w: tip %d has no id", ErrInvalidCatalog, index)
		}
		if _, duplicate := seen[id]; duplicate {
			return fmt.Errorf("%w: duplicate tip id %q", ErrInvalidCatalog, id)
		}
		seen[id] = struct{}{}
	}
	return nil
}

func (manager *Manager) DefaultLanguage() string {
	return manager.defaultLanguage
}

func (manager *Manager) SupportedLanguages() []string {
	result := make([]string, len(manager.supported))
	copy(result, manager.supported)
	return result
}

func (manager *Manager) NormalizeLanguage(raw string) string {
	normalized := normalizeLanguageTag(raw)
	if manager.isSupported(normalized) {
		return normalized
	}
	return manager.defaultLanguage
}

func (manager *Manager) DetectFromAcceptLanguage(raw string) string {
	for _, part := range strings.Split(raw, ",") {
		token := strings.TrimSpace(strings.Split(part, ";")[0])
		normalized := normalizeLanguageTag(token)
		if manager.isSupported(normalized) {
			return normalized
		}
	}
	return manager.defaultLanguage
}

// Catalog returns a copy of the catalog for language, falling back to the
// default language.
func (manager *Manager) Catalog(language string) Catalog {
	catalog := manager.catalogs[manager.NormalizeLanguage(language)]
	return Catalog{
		Version:     catalog.Version,
		LastUpdated: catalog.LastUpdated,
		Tips:        append([]models.TipRecord(nil), catalog.Tips...),
		FAQ:         append([]models.FAQRecord(nil), catalog.FAQ...),
	}
}

func (manager *Manager) Tips(language string) []models.TipRecord {
	return manager.Catalog(language).Tips
}

// TipsByTags returns tips carrying any of tags, compared case-insensitively,
// in catalog order.
func (manager *Manager) TipsByTags(language string, tags []string) []models.TipRecord {
	wanted := lowerSet(tags)
	result := make([]models.TipRecord, 0)
	for _, tip := range manager.Tips(language) {
		if matchesAny(tip.Tags, wanted) {
			result = append(result, tip)
		}
	}
	return result
}

func (manager *Manager) TipByID(language string, id string) (models.TipRecord, bool) {
	for _, tip := range manager.catalogs[manager.NormalizeLanguage(language)].Tips {
		if tip.ID == id {
			return tip, true
		}
	}
	return models.TipRecord{}, false
}

// FAQByTags returns the whole FAQ when tags is empty.
func (manager *Manager) FAQByTags(language string, tags []string) []models.FAQRecord {
	faq := manager.Catalog(language).FAQ
	if len(tags) == 0 {
		return faq
	}
	wanted := lowerSet(tags)
	result := make([]models.FAQRecord, 0)
	for _, record := range faq {
		if matchesAny(record.Tags, wanted) {
			result = append(result, record)
		}
	}
	return result
}

func (manager *Manager) Version(language string) (string, string) {
	catalog := manager.catalogs[manager.NormalizeLanguage(language)]
	return catalog.Version, catalog.LastUpdated
}

func (manager *Manager) isSupported(language string) bool {
	if language == "" {
		return false
	}
	_, ok := manager.catalogs[language]
	return ok
}

func lowerSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range values {
		if trimmed := strings.ToLower(strings.TrimSpace(value)); trimmed != "" {
			set[trimmed] = struct{}{}
		}
	}
	return set
}

func matchesAny(tags []string, wanted map[string]struct{}) bool {
	for _, tag := range tags {
		if _, ok := wanted[strings.ToLower(tag)]; ok {
			return true
		}
	}
	return false
}

func normalizeLanguageTag(raw string) string {
	language := strings.ToLower(strings.TrimSpace(raw))
	if language == "" {
		return ""
	}
	language = strings.ReplaceAll(language, "_", "-")
	if separator := strings.Index(language, "-"); separator >= 0 {
		language = language[:separator]
	}
	return language
}
