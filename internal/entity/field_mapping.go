package entity

import (
	"context"
	"errors"
	"slices"
	"strings"
)

var ErrImportNotFound = errors.New("importação não encontrada")

// Campos de destino do CRM aceitos pelo processador de importação.
const (
	FieldName         = "name"
	FieldEmail        = "email"
	FieldWhatsApp     = "whatsapp"
	FieldGender       = "gender"
	FieldBirthDate    = "birth_date"
	FieldStreet       = "street"
	FieldNumber       = "number"
	FieldComplement   = "complement"
	FieldNeighborhood = "neighborhood"
	FieldCity         = "city"
	FieldState        = "state"
	FieldZipCode      = "zip_code"
	FieldTags         = "tags"
)

var DestinationFields = []string{
	FieldName, FieldEmail, FieldWhatsApp, FieldGender, FieldBirthDate,
	FieldStreet, FieldNumber, FieldComplement, FieldNeighborhood,
	FieldCity, FieldState, FieldZipCode, FieldTags,
}

func IsDestinationField(field string) bool {
	return slices.Contains(DestinationFields, field)
}

// FieldMapping associates one destination field with the CSV columns that feed
// it and the free-text rules the import processor applies.
type FieldMapping struct {
	Source []string `json:"source"`
	Rules  string   `json:"rules"`
}

func (fm *FieldMapping) add(column string) bool {
	column = strings.TrimSpace(column)
	if column == "" || slices.Contains(fm.Source, column) {
		return false
	}
	fm.Source = append(fm.Source, column)
	return true
}

func (fm *FieldMapping) remove(column string) bool {
	i := slices.Index(fm.Source, strings.TrimSpace(column))
	if i < 0 {
		return false
	}
	fm.Source = slices.Delete(fm.Source, i, i+1)
	return true
}

// ImportMapping is keyed by destination field. It marshals to the bare record
// the import endpoint expects.
type ImportMapping map[string]*FieldMapping

func NewImportMapping() ImportMapping {
	m := make(ImportMapping, len(DestinationFields))
	for _, field := range DestinationFields {
		m[field] = &FieldMapping{Source: []string{}}
	}
	return m
}

// Normalize drops unknown keys, fills missing fields and re-applies the source
// invariants (trimmed, non-empty, no duplicates) to data that came from outside.
func (m ImportMapping) Normalize() ImportMapping {
	out := NewImportMapping()
	for field, fm := range m {
		if fm == nil || !IsDestinationField(field) {
			continue
		}
		for _, col := range fm.Source {
			out[field].add(col)
		}
		out[field].Rules = fm.Rules
	}
	return out
}

// AddSource appends column to field's sources. Returns false when nothing changed.
func (m ImportMapping) AddSource(field, column string) bool {
	fm, ok := m[field]
	if !ok {
		return false
	}
	return fm.add(column)
}

func (m ImportMapping) RemoveSource(field, column string) bool {
	fm, ok := m[field]
	if !ok {
		return false
	}
	return fm.remove(column)
}

func (m ImportMapping) SetRules(field, text string) bool {
	fm, ok := m[field]
	if !ok || fm.Rules == text {
		return false
	}
	fm.Rules = text
	return true
}

func (m ImportMapping) Sources(field string) []string {
	if fm, ok := m[field]; ok {
		return slices.Clone(fm.Source)
	}
	return nil
}

func (m ImportMapping) Rules(field string) string {
	if fm, ok := m[field]; ok {
		return fm.Rules
	}
	return ""
}

type ContactImport struct {
	ID           string        `json:"id"`
	FileName     string        `json:"file_name"`
	Status       string        `json:"status"`
	Columns      []string      `json:"columns"`
	FieldMapping ImportMapping `json:"field_mapping"`
}

// MappingDraftRepository guarda rascunhos locais do mapeamento até o save.
type MappingDraftRepository interface {
	Find(ctx context.Context, importID string) (ImportMapping, error)
	Save(ctx context.Context, importID string, mapping ImportMapping) error
	Delete(ctx context.Context, importID string) error
}

var ErrDraftNotFound = errors.New("rascunho não encontrado")
