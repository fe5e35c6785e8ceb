package cli

import (
	"fmt"
	"io"
)

// CommandHelp represents the structure of help information for a specific command.
type CommandHelp struct {
	Scope     string
	Operation string
	ShortDesc string
	LongDesc  string
	Syntax    string
	Arguments []string
	Options   []string
	Examples  []string
}

// commandHelps is a slice of CommandHelp structs containing help information for all commands.
var commandHelps = []CommandHelp{
	{
		Scope:     "user",
		Operation: "login",
		ShortDesc: "Log in",
		LongDesc:  "Logs in with the given credentials. The session is kept across restarts until logout.",
		Syntax:    "user login <username> <password>",
		Arguments: []string{"username: The account name", "password: The account password"},
		Examples:  []string{"user login mluukkai salainen"},
	},
	{
		Scope:     "user",
		Operation: "logout",
		ShortDesc: "Log out",
		LongDesc:  "Forgets the stored session. The blog list stays visible.",
		Syntax:    "user logout",
		Examples:  []string{"user logout"},
	},
	{
		Scope:     "user",
		Operation: "whoami",
		ShortDesc: "Show the logged-in user",
		LongDesc:  "Shows the name and username of the logged-in user.",
		Syntax:    "user whoami",
		Examples:  []string{"user whoami"},
	},
	{
		Scope:     "blog",
		Operation: "list",
		ShortDesc: "List blogs",
		LongDesc:  "Displays the blog list as last fetched, most liked first.",
		Syntax:    "blog list",
		Examples:  []string{"blog list"},
	},
	{
		Scope:     "blog",
		Operation: "refresh",
		ShortDesc: "Fetch the blog list again",
		LongDesc:  "Fetches the blog list from the server and displays it.",
		Syntax:    "blog refresh",
		Examples:  []string{"blog refresh"},
	},
	{
		Scope:     "blog",
		Operation: "add",
		ShortDesc: "Add a blog",
		LongDesc:  "Adds a new blog. Requires login.",
		Syntax:    "blog add <title> <author> <url>",
		Arguments: []string{"title: The blog title", "author: The blog author", "url: The blog address"},
		Examples:  []string{`blog add "Go Proverbs" "Rob Pike" https://go-proverbs.github.io`},
	},
	{
		Scope:     "blog",
		Operation: "like",
		ShortDesc: "Like a blog",
		LongDesc:  "Adds one like to a blog. Requires login.",
		Syntax:    "blog like <ref>",
		Arguments: []string{"ref: Position in the list (1 is the first) or blog id"},
		Examples:  []string{"blog like 1"},
	},
	{
		Scope:     "blog",
		Operation: "delete",
		ShortDesc: "Remove a blog",
		LongDesc:  "Removes a blog after confirmation. Only the user who added a blog can remove it.",
		Syntax:    "blog delete <ref> [--yes]",
		Arguments: []string{"ref: Position in the list (1 is the first) or blog id"},
		Options:   []string{"--yes: Skip the confirmation"},
		Examples:  []string{"blog delete 2", "blog delete 2 --yes"},
	},
	{
		Scope:     "blog",
		Operation: "view",
		ShortDesc: "Show blog details",
		LongDesc:  "Shows the url, likes and creator of a blog.",
		Syntax:    "blog view <ref>",
		Arguments: []string{"ref: Position in the list (1 is the first) or blog id"},
		Examples:  []string{"blog view 1"},
	},
	{
		Scope:     "blog",
		Operation: "export",
		ShortDesc: "Export the blog list to a file",
		LongDesc:  "Writes the current blog list to a file in JSON or XML format.",
		Syntax:    "blog export <filename> [json|xml]",
		Arguments: []string{"filename: The file to write", "format: (Optional) 'json' or 'xml'. Defaults to the file extension, then 'json'"},
		Examples:  []string{"blog export blogs.json", "blog export blogs.xml xml"},
	},
}

// printHelp prints the help message based on the provided arguments
func printHelp(w io.Writer, args []string) {
	switch len(args) {
	case 0:
		showGeneralHelp(w)
	case 1:
		showScopeHelp(w, args[0])
	case 2:
		showOperationHelp(w, args[0], args[1])
	default:
		fmt.Fprintln(w, "Invalid help command. Use 'help [scope] [operation]'")
	}
}

func showGeneralHelp(w io.Writer) {
	fmt.Fprintln(w, "Command syntax: <scope> <operation> [arguments] [options]")
	fmt.Fprintln(w, "\nAvailable commands:")
	currentScope := ""
	for _, cmd := range commandHelps {
		if cmd.Scope != currentScope {
			fmt.Fprintf(w, "\n%s:\n", cmd.Scope)
			currentScope = cmd.Scope
		}
		fmt.Fprintf(w, "  %-15s %s\n", cmd.Operation, cmd.ShortDesc)
	}
	fmt.Fprintln(w, "\nUse 'exit' or 'quit' to leave.")
}

func showScopeHelp(w io.Writer, scope string) {
	found := false
	for _, cmd := range commandHelps {
		if cmd.Scope == scope {
			if !found {
				fmt.Fprintf(w, "Commands for %s:\n\n", scope)
				found = true
			}
			fmt.Fprintf(w, "%-15s %s\n", cmd.Operation, cmd.ShortDesc)
		}
	}
	if !found {
		fmt.Fprintf(w, "No help found for %s\n", scope)
	}
}

func showOperationHelp(w io.Writer, scope, operation string) {
	for _, cmd := range commandHelps {
		if cmd.Scope != scope || cmd.Operation != operation {
			continue
		}
		fmt.Fprintf(w, "Command: %s %s\n", scope, operation)
		fmt.Fprintf(w, "Description: %s\n", cmd.LongDesc)
		fmt.Fprintf(w, "Syntax: %s\n", cmd.Syntax)
		if len(cmd.Arguments) > 0 {
			fmt.Fprintln(w, "Arguments:")
			for _, arg := range cmd.Arguments {
				fmt.Fprintf(w, "  %s\n", arg)
			}
		}
		if len(cmd.Options) > 0 {
			fmt.Fprintln(w, "Options:")
			for _, opt := range cmd.Options {
				fmt.Fprintf(w, "  %s\n", opt)
			}
		}
		if len(cmd.Examples) > 0 {
			fmt.Fprintln(w, "Examples:")
			for _, ex := range cmd.Examples {
				fmt.Fprintf(w, "  %s\n", ex)
			}
		}
		return
	}
	fmt.Fprintf(w, "No help found for %s %s\n", scope, operation)
}
