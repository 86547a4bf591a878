package ledgerv1

// Kind distinguishes ledger entry variants.
type Kind string

const (
	// KindCommand is a validated command recorded for replay.
	KindCommand Kind = "command"
	// KindSnapshot is a full engine state capture. Replay restores the most
	// recent snapshot seen and re-applies the commands after it.
	KindSnapshot Kind = "snapshot"
)

// Entry is one record of the append-only ledger stream. Fields carries the
// flat stream payload: for commands the original command fields with the
// resolved order_id, for snapshots the serialized engine state under "state".
type Entry struct {
	ID     string                 `json:"id"`
	Kind   Kind                   `json:"kind"`
	Fields map[string]interface{} `json:"fields"`
}
