package model

// Command is a parsed shell command: <scope> <operation> [args...].
type Command struct {
	Scope     string
	Operation string
	Args      []string
}
