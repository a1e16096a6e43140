// Package types defines the core data types shared across biograph.
//
// This package contains the fundamental types used throughout the library:
//   - Conversation, ChatMessage, ConversationContext: session state
//   - RankedEntity, Source: retrieval and citation units
//   - GraphNode, GraphRelationship, Subgraph: graph neighborhood data
//   - Message, Response: the language-model request/response pair
//
// # Entity Types
//
// The biomedical entity type set is closed (drug, disease, protein, gene,
// pathway). InferEntityType maps graph labels onto it using a fixed priority
// order, defaulting to drug when no label matches.
//
// # JSON Serialization
//
// All types are designed to be JSON-serializable with appropriate struct
// tags. Context sets are rebuilt from messages and excluded from JSON.
package types
