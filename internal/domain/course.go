package domain

// Courses is the catalog the assistant answers about and accepts enrollments for.
var Courses = []string{
	"AI Automation",
	"Data Science",
	"Agentic AI",
	"Generative AI",
}

// DefaultInterest is the lead interest recorded when the client sends none.
const DefaultInterest = "AI Courses"

// KeyPrefix namespaces every key this service writes to shared key-value stores.
const KeyPrefix = "coursebot:"

// IsCourse reports whether name is exactly one of the catalog courses.
func IsCourse(name string) bool {
	for _, c := range Courses {
		if c == name {
			return true
		}
	}
	return false
}
