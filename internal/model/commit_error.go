package model

// CommitError records an input line that could not be turned into a commit.
type CommitError struct {
	Line  int    `json:"line"`
	Input string `json:"input"`
	Error string `json:"error"`
}
