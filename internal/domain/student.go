package domain

import "regexp"

var studentIDPattern = regexp.MustCompile(`^S[0-9]{7}$`)

// ValidStudentID reports whether id has the student card format S + 7 digits.
func ValidStudentID(id string) bool {
	return studentIDPattern.MatchString(id)
}

// Student is a roster entry.
type Student struct {
	ID      string
	Grade   int
	ClassNo int
	Number  int
	Name    string
}
