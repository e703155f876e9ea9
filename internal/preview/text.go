package preview

import (
	"fmt"
	"strings"
)

// Person is one team card on the people tester page.
type Person struct {
	Name        string
	Role        string
	Description string
	Avatar      string
	Links       []Link
}

// Link is a social link rendered as an icon.
type Link struct {
	Label string
	Icon  string
}

const defaultIcon = "https://cdn-icons-png.flaticon.com/512/846/846551.png"

var platformIcons = []struct {
	keyword string
	icon    string
}{
	{"linkedin", "https://cdn-icons-png.flaticon.com/512/174/174857.png"},
	{"github", "https://cdn-icons-png.flaticon.com/512/25/25231.png"},
	{"twitter", "https://cdn-icons-png.flaticon.com/512/733/733579.png"},
	{"dribbble", "https://cdn-icons-png.flaticon.com/512/174/174881.png"},
}

var avatarIDs = []int{68, 12, 44, 32, 5}

// IconFor picks a platform icon by keyword, falling back to a generic web
// icon.
func IconFor(label string) string {
	lower := strings.ToLower(label)
	for _, p := range platformIcons {
		if strings.Contains(lower, p.keyword) {
			return p.icon
		}
	}
	return defaultIcon
}

// ParsePeople reads blank-line separated blocks of
//
//	Name
//	Role
//	Description
//	Link lines...
//
// Blocks with fewer than three non-empty lines are skipped.
func ParsePeople(raw string) []Person {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	var people []Person
	for _, block := range strings.Split(raw, "\n\n") {
		var lines []string
		for _, line := range strings.Split(block, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				lines = append(lines, line)
			}
		}
		if len(lines) < 3 {
			continue
		}

		p := Person{
			Name:        lines[0],
			Role:        lines[1],
			Description: lines[2],
			Avatar:      fmt.Sprintf("https://i.pravatar.cc/150?img=%d", avatarIDs[len(people)%len(avatarIDs)]),
		}
		for _, label := range lines[3:] {
			p.Links = append(p.Links, Link{Label: label, Icon: IconFor(label)})
		}
		people = append(people, p)
	}
	return people
}

// ParseParagraphs returns every non-empty trimmed line.
func ParseParagraphs(raw string) []string {
	var paragraphs []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			paragraphs = append(paragraphs, line)
		}
	}
	return paragraphs
}
