// Package biograph answers natural-language biomedical questions over a
// knowledge graph.
//
// A chat turn runs three stages: retrieve (embed the query and search the
// per-type vector indexes), expand (pull the bounded neighborhood around the
// hits and fuse similarity with graph centrality), and generate (one
// completion call over the assembled context, returning a cited answer with a
// confidence score). Conversations are held in a bounded in-memory store so
// follow-up questions carry the entities and relationships already discussed.
//
// The Client type wires the stages together; the packages under pkg/ expose
// each stage for callers that need finer control.
package biograph
