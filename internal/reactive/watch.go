package reactive

// Watch runs effect once immediately, then again after every change to any
// of the given sources. The returned function stops the watcher.
func Watch(effect func(), deps ...Source) func() {
	cancels := make([]func(), 0, len(deps))
	for _, dep := range deps {
		cancels = append(cancels, dep.OnChange(effect))
	}
	effect()
	return func() {
		for _, cancel := range cancels {
			cancel()
		}
	}
}
