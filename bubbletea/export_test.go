package bubbletea

// SetRunning puts m in the running state without starting a call.
func SetRunning(m Model) Model {
	m.running = true
	return m
}

// StatusLine exports statusLine for testing.
func StatusLine(m Model) string {
	return m.statusLine()
}
