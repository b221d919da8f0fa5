// Package groups assigns merged nodes to node groups.
//
// A node's group [Key] is its color plus the set of relations among its
// incident links, e.g. "(P:P/pBb)" for a purple node touching covered and
// half-orphan links, or "(B:0)" for a blue loner. In the correctness modes a
// trailing bit is added: the merge correctness label ([ModeNodeCorrectness])
// or whether the node's Jaccard similarity reaches a threshold
// ([ModeJaccard]). Red nodes always carry "/0" in those modes.
//
// Groups are looked up in an ordered [Table]. Two tables are embedded as TOML:
// 40 groups for [ModeNone] and 76 for the correctness modes. Custom tables
// use the same format:
//
//	name = "custom"
//	correctness = false
//
//	[[group]]
//	key = "(P:P)"
//	color = "PowderBlue"
//
// The table order drives the group layout and the component order of the
// node-group ratio vector used for NGS scoring.
package groups
