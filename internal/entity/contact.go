package entity

import (
	"errors"
	"strings"
)

var ErrUnknownFilter = errors.New("filtro desconhecido")

// FilterNone é o valor sentinela dos selects ("nenhum") e equivale a vazio.
const FilterNone = "none"

type Contact struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Email     string   `json:"email"`
	WhatsApp  string   `json:"whatsapp"`
	Gender    string   `json:"gender,omitempty"`
	BirthDate string   `json:"birth_date,omitempty"`
	City      string   `json:"city,omitempty"`
	State     string   `json:"state,omitempty"`
	Tags      []string `json:"tags,omitempty"`
}

// Filter keys, na ordem em que aparecem na tela.
const (
	FilterName           = "name"
	FilterEmail          = "email"
	FilterWhatsApp       = "whatsapp"
	FilterGender         = "gender"
	FilterBirthDateStart = "birth_date_start"
	FilterBirthDateEnd   = "birth_date_end"
	FilterStreet         = "street"
	FilterNeighborhood   = "neighborhood"
	FilterCity           = "city"
	FilterState          = "state"
	FilterZipCode        = "zip_code"
	FilterTags           = "tags"
)

var FilterKeys = []string{
	FilterName, FilterEmail, FilterWhatsApp, FilterGender,
	FilterBirthDateStart, FilterBirthDateEnd,
	FilterStreet, FilterNeighborhood, FilterCity, FilterState, FilterZipCode,
	FilterTags,
}

// Filters is a flat record of named string filters. Empty string means unset.
type Filters struct {
	Name           string `json:"name,omitempty"`
	Email          string `json:"email,omitempty"`
	WhatsApp       string `json:"whatsapp,omitempty"`
	Gender         string `json:"gender,omitempty"`
	BirthDateStart string `json:"birth_date_start,omitempty"`
	BirthDateEnd   string `json:"birth_date_end,omitempty"`
	Street         string `json:"street,omitempty"`
	Neighborhood   string `json:"neighborhood,omitempty"`
	City           string `json:"city,omitempty"`
	State          string `json:"state,omitempty"`
	ZipCode        string `json:"zip_code,omitempty"`
	Tags           string `json:"tags,omitempty"`
}

func (f *Filters) field(key string) *string {
	switch key {
	case FilterName:
		return &f.Name
	case FilterEmail:
		return &f.Email
	case FilterWhatsApp:
		return &f.WhatsApp
	case FilterGender:
		return &f.Gender
	case FilterBirthDateStart:
		return &f.BirthDateStart
	case FilterBirthDateEnd:
		return &f.BirthDateEnd
	case FilterStreet:
		return &f.Street
	case FilterNeighborhood:
		return &f.Neighborhood
	case FilterCity:
		return &f.City
	case FilterState:
		return &f.State
	case FilterZipCode:
		return &f.ZipCode
	case FilterTags:
		return &f.Tags
	}
	return nil
}

func (f *Filters) Set(key, value string) error {
	p := f.field(key)
	if p == nil {
		return ErrUnknownFilter
	}
	*p = value
	return nil
}

func (f Filters) Get(key string) string {
	if p := f.field(key); p != nil {
		return *p
	}
	return ""
}

// Active returns only the filters that carry a value. Keys holding "" or the
// "none" sentinel are left out.
func (f Filters) Active() map[string]string {
	active := make(map[string]string)
	for _, key := range FilterKeys {
		v := f.Get(key)
		if v == "" || v == FilterNone {
			continue
		}
		active[key] = v
	}
	return active
}

// NormalizeTags splits a comma separated tag list, trims every token, drops the
// empty ones and joins the rest back with ", ".
func NormalizeTags(raw string) string {
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return strings.Join(tags, ", ")
}
