package main

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, runtime failure)
	ExitConfigError = 2 // Configuration error (invalid config file, unknown scraper)
	ExitDataError   = 3 // Data error (unreadable or malformed input batch)
	ExitNoEntries   = 4 // Inputs were read but no scraper produced an entry
)
