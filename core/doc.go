// Package core provides the foundational domain types shared by the agentcrew
// packages:
//
//   - Messages and roles exchanged with a completion model
//   - History, the bounded conversation buffer of a single agent run
//   - The sentinel error taxonomy matched with errors.Is
//   - Identifier generation for run correlation
//
// The package has no knowledge of models, tools or scheduling; those live in
// the model, tool, agent and crew packages respectively.
package core
