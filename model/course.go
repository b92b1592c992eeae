package model

import (
	"strings"
)

// Department is an academic department a course is listed under.
type Department struct {
	Name string `json:"name"`
	Code string `json:"code"` // Short code, e.g. "COSC"
}

// Section is a single meeting section of a course.
type Section struct {
	Number    int    `json:"number"`
	Location  string `json:"location"` // Building and room, e.g. "SMUD 207"
	Professor string `json:"professor,omitempty"`
}

// Course is a read-only view of one course record in a catalog.
// Every field other than ID is optional; missing values are treated as empty.
type Course struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Codes       []string     `json:"codes,omitempty"` // e.g. ["COSC-111"]
	Departments []Department `json:"departments,omitempty"`
	Divisions   []string     `json:"divisions,omitempty"` // e.g. ["Science & Mathematics"]
	Keywords    []string     `json:"keywords,omitempty"`
	Description string       `json:"description,omitempty"`
	Professors  []string     `json:"professors,omitempty"`
	Sections    []Section    `json:"sections,omitempty"`
	HalfCredit  bool         `json:"half_credit,omitempty"`
	Credits     int          `json:"credits,omitempty"` // 2 for half courses, 4 for full courses
}

// IsHalfCredit reports whether the course carries half credit.
func (c Course) IsHalfCredit() bool {
	return c.HalfCredit || c.Credits == 2
}

// DepartmentCodes returns the department codes of the course, upper-cased.
func (c Course) DepartmentCodes() []string {
	codes := make([]string, 0, len(c.Departments))
	for _, dept := range c.Departments {
		if code := strings.TrimSpace(dept.Code); code != "" {
			codes = append(codes, strings.ToUpper(code))
		}
	}
	return codes
}

// DistinctDivisions counts divisions ignoring case and surrounding whitespace.
func (c Course) DistinctDivisions() int {
	seen := make(map[string]struct{}, len(c.Divisions))
	for _, division := range c.Divisions {
		key := strings.ToLower(strings.TrimSpace(division))
		if key == "" {
			continue
		}
		seen[key] = struct{}{}
	}
	return len(seen)
}

// Locations returns the non-empty section locations of the course.
func (c Course) Locations() []string {
	locations := make([]string, 0, len(c.Sections))
	for _, section := range c.Sections {
		if loc := strings.TrimSpace(section.Location); loc != "" {
			locations = append(locations, loc)
		}
	}
	return locations
}

// Clone returns a deep copy so that callers can hand out snapshots safely.
func (c Course) Clone() Course {
	clone := c
	clone.Codes = append([]string(nil), c.Codes...)
	clone.Departments = append([]Department(nil), c.Departments...)
	clone.Divisions = append([]string(nil), c.Divisions...)
	clone.Keywords = append([]string(nil), c.Keywords...)
	clone.Professors = append([]string(nil), c.Professors...)
	clone.Sections = append([]Section(nil), c.Sections...)
	return clone
}
