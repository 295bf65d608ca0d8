// Package model defines the provider‑agnostic completion collaborator used by
// agentcrew agents.
//
// Core goals:
//   - A single blocking Complete call over an ordered message list
//   - Keep request shapes minimal and transport independent
//   - Facilitate lightweight mocking for tests (MockModel)
//
// Providers (OpenAI and OpenAI-compatible endpoints such as Groq, Anthropic)
// implement the Model interface in sub-packages so agents remain decoupled
// from vendor SDKs.
package model
