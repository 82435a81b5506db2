package store

import (
	"sort"
	"strings"

	"rhystmorgan/phonebook/internal/models"
)

// Group is one initial's section of the projected list.
type Group struct {
	Key      string
	Contacts []models.Contact
}

// Project filters contacts by query, ranks prefix matches ahead of other
// matches, sorts by display name and groups by initial. Group keys are in
// ascending code point order, so "#" comes before letters.
func Project(contacts []models.Contact, query string) []Group {
	q := strings.ToLower(strings.TrimSpace(query))

	type ranked struct {
		contact models.Contact
		rank    int
		sortKey string
	}

	matches := make([]ranked, 0, len(contacts))
	for _, c := range contacts {
		name := strings.ToLower(c.DisplayName())
		phone := strings.ToLower(c.Phone)

		rank := 0
		if q != "" {
			if !strings.Contains(name, q) && !strings.Contains(phone, q) {
				continue
			}
			if !strings.HasPrefix(name, q) && !strings.HasPrefix(phone, q) {
				rank = 1
			}
		}

		sortKey := name
		if strings.TrimSpace(sortKey) == "" {
			sortKey = phone
		}
		matches = append(matches, ranked{contact: c, rank: rank, sortKey: sortKey})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].rank != matches[j].rank {
			return matches[i].rank < matches[j].rank
		}
		return matches[i].sortKey < matches[j].sortKey
	})

	index := make(map[string]int)
	var groups []Group
	for _, m := range matches {
		key := m.contact.Initial()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, Group{Key: key})
		}
		groups[i].Contacts = append(groups[i].Contacts, m.contact)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Key < groups[j].Key
	})
	return groups
}

// Flatten returns the projected contacts in display order.
func Flatten(groups []Group) []models.Contact {
	var out []models.Contact
	for _, g := range groups {
		out = append(out, g.Contacts...)
	}
	return out
}
