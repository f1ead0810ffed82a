package logger

// Component-specific logger functions

// DB returns a logger for database operations
func DB() Logger {
	return WithField("component", "db")
}

// Migration returns a logger for migration operations
func Migration() Logger {
	return WithField("component", "migration")
}

// CLI returns a logger for CLI operations
func CLI() Logger {
	return WithField("component", "cli")
}

// HTTP returns a logger for the API server
func HTTP() Logger {
	return WithField("component", "http")
}

// Reminder returns a logger for the reminder engine
func Reminder() Logger {
	return WithField("component", "reminder")
}

// Mail returns a logger for outbound email
func Mail() Logger {
	return WithField("component", "mail")
}

// Sweeper returns a logger for the scheduled sweep worker
func Sweeper() Logger {
	return WithField("component", "sweeper")
}

// CV returns a logger for CV storage operations
func CV() Logger {
	return WithField("component", "cv")
}
