package expr

import "path/filepath"

// filepathMatch evaluates the matches(subject, pattern) built-in using
// shell-glob syntax, the same style the Device: directive's device-name
// matching uses.
func filepathMatch(pattern, subject string) (bool, error) {
	return filepath.Match(pattern, subject)
}
