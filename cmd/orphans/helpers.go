package main

// getProjectDir returns the project directory argument, defaulting to ".".
func getProjectDir(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
