package cutscene

// Tracker is the run-registry contract the interpreter depends on. It is
// injected into Run/Resume rather than reached through a package global, so
// tests and embedders control registration explicitly.
type Tracker interface {
	// Register records a fresh run, replacing any existing record for the
	// same graph.
	Register(g *Graph, addToSkipQueue bool, startIndex int)

	// Finished marks the graph's record as no longer running.
	Finished(g *Graph)

	// Paused snapshots the graph's resume state into its record.
	Paused(g *Graph)

	// Launch starts another graph asset by name (invoke-subgraph outcomes).
	Launch(target string, from *Graph) error
}
