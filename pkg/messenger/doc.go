/*
Package messenger delivers chat messages to an external webhook.

Messenger is the transport interface pkg/notify dispatches through. The
Webhook implementation posts batched messages to a configured endpoint
with bearer auth, retrying transport errors, 429s, and 5xx responses
with doubling backoff; 4xx responses are permanent and not retried. The
server reports per-address failures in a Result so a partially delivered
batch is distinguishable from a dead endpoint.

Nop is the implementation used when no webhook is configured: every send
reports full delivery and nothing leaves the process.
*/
package messenger
