/*
Package assistant executes structured workspace operations extracted from
natural-language requests.

Interpretation and execution are deliberately split. A Collaborator
(typically a hosted language model behind an HTTP endpoint) turns "assign
the login bug to Dana and mark it urgent" into Intents; the Assistant
executes each intent through the mutation pipeline, resolving names and
emails to entity IDs against the live session caches. Ambiguous
references fail that intent with a be-more-specific error rather than
guessing.

Intents execute independently: one failure never aborts the batch, and
every intent reports its own Outcome. Because execution goes through
pkg/pipeline, assistant-driven changes get the same validation, optimistic
overlay, rollback, and notifications as any other mutation.
*/
package assistant
