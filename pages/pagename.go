// Package pages maps admin dashboard routes to the titles shown in the header.
package pages

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const AdminPrefix = "/admin"

var segmentSpaces = strings.NewReplacer("-", " ", "_", " ")

var names = map[string]string{
	"":                "Dashboard",
	"dashboard":       "Dashboard",
	"bookings":        "Bookings",
	"vehicles":        "Vehicles",
	"car-sales":       "Car Sales",
	"blog":            "Blog",
	"testimonials":    "Testimonials",
	"gallery":         "Gallery",
	"faq":             "FAQ",
	"inquiries":       "Inquiries",
	"newsletter":      "Newsletter",
	"cms":             "CMS",
	"theming":         "Theming",
	"analytics":       "Analytics",
	"chatbot":         "Chatbot",
	"cookie-consents": "Cookie Consents",
	"settings":        "Settings",
	"profile":         "Profile",
}

// Name returns the header title for an admin path such as /admin/car-sales/12.
// The first segment after /admin decides the name, so nested pages such as
// /admin/fleet/long-term-hire keep their section's title.
func Name(path string) string {
	path, _, _ = strings.Cut(path, "?")
	path, _, _ = strings.Cut(path, "#")
	path = strings.Trim(path, "/")

	section, rest, _ := strings.Cut(path, "/")
	if section == strings.Trim(AdminPrefix, "/") {
		section, _, _ = strings.Cut(rest, "/")
	}
	section = strings.ToLower(section)
	if name, ok := names[section]; ok {
		return name
	}
	// A Caser keeps state between calls, so each call gets its own
	return cases.Title(language.BritishEnglish).String(segmentSpaces.Replace(section))
}
