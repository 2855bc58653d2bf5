package scanner

// allScanners assembles the built-in catalog. Registration order follows the
// group listing order; scan output ordering and merge tie-breaking both
// depend on it staying fixed.
func allScanners() []*Scanner {
	var out []*Scanner
	out = append(out, javaScanners()...)
	out = append(out, pythonScanners()...)
	out = append(out, dotnetScanners()...)
	out = append(out, goScanners()...)
	out = append(out, rubyScanners()...)
	out = append(out, javascriptScanners()...)
	out = append(out, messagingScanners()...)
	out = append(out, schemaScanners()...)
	return out
}
