// Package domain contains the core data model for Parley conversations:
// the immutable ConversationDefinition supplied by the caller, the mutable
// per-conversation Session, and the per-turn TurnResult.
//
// The engine only ever reads the definition; all mutation happens on the
// Session, which is owned by exactly one conversation.
package domain
