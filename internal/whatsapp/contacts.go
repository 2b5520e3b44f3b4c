package whatsapp

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	apperrors "taskninja/internal/errors"
)

var phoneRe = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// Contact maps a short name to an international phone number.
type Contact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

// ContactBook is a flat JSON address book for message targets.
type ContactBook struct {
	path string
}

// NewContactBook opens the book at path. The file is created on first save.
func NewContactBook(path string) *ContactBook {
	return &ContactBook{path: path}
}

// NormalizePhone strips separators and validates digits-only international
// format.
func NormalizePhone(phone string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
	if !phoneRe.MatchString(cleaned) {
		return "", apperrors.InvalidInput(fmt.Sprintf("phone number %q is not a valid international number", phone))
	}
	return strings.TrimPrefix(cleaned, "+"), nil
}

// List returns all contacts sorted by name.
func (b *ContactBook) List() ([]Contact, error) {
	data, err := os.ReadFile(b.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.Wrap(apperrors.CodeIO, "failed to read contacts", err)
	}
	var contacts []Contact
	if err := json.Unmarshal(data, &contacts); err != nil {
		return nil, apperrors.FileFormat(b.path, err)
	}
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].Name < contacts[j].Name })
	return contacts, nil
}

// Add saves a contact, replacing any existing entry with the same name.
func (b *ContactBook) Add(name, phone string) (Contact, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Contact{}, apperrors.InvalidInput("contact name must not be empty")
	}
	normalized, err := NormalizePhone(phone)
	if err != nil {
		return Contact{}, err
	}

	contacts, err := b.List()
	if err != nil {
		return Contact{}, err
	}
	contact := Contact{Name: name, Phone: normalized}
	replaced := false
	for i, c := range contacts {
		if strings.EqualFold(c.Name, name) {
			contacts[i] = contact
			replaced = true
			break
		}
	}
	if !replaced {
		contacts = append(contacts, contact)
	}
	return contact, b.save(contacts)
}

// Remove deletes a contact by name.
func (b *ContactBook) Remove(name string) error {
	contacts, err := b.List()
	if err != nil {
		return err
	}
	kept := contacts[:0]
	found := false
	for _, c := range contacts {
		if strings.EqualFold(c.Name, name) {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return apperrors.NotFound(fmt.Sprintf("contact %q", name))
	}
	return b.save(kept)
}

// Resolve looks a target up by contact name, falling back to treating it as
// a raw phone number.
func (b *ContactBook) Resolve(target string) (string, error) {
	contacts, err := b.List()
	if err != nil {
		return "", err
	}
	for _, c := range contacts {
		if strings.EqualFold(c.Name, target) {
			return c.Phone, nil
		}
	}
	return NormalizePhone(target)
}

func (b *ContactBook) save(contacts []Contact) error {
	if err := os.MkdirAll(filepath.Dir(b.path), 0755); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to create data directory", err)
	}
	sort.Slice(contacts, func(i, j int) bool { return contacts[i].Name < contacts[j].Name })
	data, err := json.MarshalIndent(contacts, "", "  ")
	if err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to encode contacts", err)
	}
	if err := os.WriteFile(b.path, data, 0644); err != nil {
		return apperrors.Wrap(apperrors.CodeIO, "failed to write contacts", err)
	}
	return nil
}
