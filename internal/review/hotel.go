package review

import "strings"

// Placeholders used when the hotel name or location is left blank.
const (
	FallbackName     = "未命名酒店"
	FallbackLocation = "该城市某处"
)

// Resolved returns a copy of h with blank fields replaced by placeholders.
func (h Hotel) Resolved() Hotel {
	h.Name = strings.TrimSpace(h.Name)
	h.Location = strings.TrimSpace(h.Location)
	if h.Name == "" {
		h.Name = FallbackName
	}
	if h.Location == "" {
		h.Location = FallbackLocation
	}
	return h
}
