// Package view tracks presentation state that lives beside the family graph:
// which subtrees are folded and which generation each person sits on.
//
// A [Controller] is owned by one session. Fold flags are keyed by person id,
// default to expanded and are cleared by [Controller.ResetForTree] whenever
// the selected tree changes. They never touch the person records or the
// forest; folding only decides which rows [Controller.Nodes] emits.
package view
