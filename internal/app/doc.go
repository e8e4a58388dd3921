// Package app wires the graph pipeline end to end: load configuration,
// normalize projects, resolve edges, build the graph, validate constraints,
// and publish the result for lock-free concurrent readers.
//
// A Pipeline owns exactly one published graph at a time behind an atomic
// pointer. Reloading builds a complete replacement and swaps it in one step,
// so in-flight readers of the previous graph are never disturbed and no
// reader can observe a partially built graph.
package app
