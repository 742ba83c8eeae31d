package models

import "time"

// ProposalKind identifies what a schema proposal intends to mutate.
type ProposalKind string

const (
	ProposalKindInsertRow     ProposalKind = "insert_row"
	ProposalKindExtendTable   ProposalKind = "extend_table"
	ProposalKindCreateTable   ProposalKind = "create_table"
)

// ProposalState is the decision lifecycle for a submitted proposal.
// States: pending → {approved, rejected, auto_approved}; terminal on decision.
type ProposalState string

const (
	ProposalStatePending      ProposalState = "pending"
	ProposalStateApproved     ProposalState = "approved"
	ProposalStateRejected     ProposalState = "rejected"
	ProposalStateAutoApproved ProposalState = "auto_approved"
)

// SchemaProposal carries a candidate mutation through the Governance
// Gateway (spec §3, §4.4).
type SchemaProposal struct {
	ID          string         `json:"id"`
	Kind        ProposalKind   `json:"kind"`
	TargetTable string         `json:"target_table"`
	Payload     map[string]any `json:"payload"`
	Confidence  float64        `json:"confidence"`
	Reasoning   string         `json:"reasoning"`
	SourceRef   string         `json:"source_ref"`
	State       ProposalState  `json:"state"`
	CreatedAt   time.Time      `json:"created_at"`
	DecidedAt   *time.Time     `json:"decided_at,omitempty"`
}

// GovernanceDecision is the Governance Gateway's normalized response to a
// Submit call (spec §4.4, §9 "Governance response polymorphism").
type GovernanceDecision struct {
	UpdateID string `json:"update_id"`
	Approved bool   `json:"approved"`
	Pending  bool   `json:"pending"`
	Reason   string `json:"reason,omitempty"`
}

// Severity classifies the blast radius of a contradiction or alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
	SeverityError    Severity = "error"
)

// ContradictionRecord is produced by rule evaluation and consumed by the
// Alert System and Trust Engine (spec §3, §4.6).
type ContradictionRecord struct {
	ID         string         `json:"id"`
	RuleName   string         `json:"rule_name"`
	Table      string         `json:"table"`
	Severity   Severity       `json:"severity"`
	RowIDs     []string       `json:"row_ids"`
	Details    map[string]any `json:"details,omitempty"`
	DetectedAt time.Time      `json:"detected_at"`
}

// Alert is a deduplicated, deterministic-identity condition surfaced to
// operators (spec §3, §4.7).
type Alert struct {
	ID           string         `json:"id"`
	Severity     Severity       `json:"severity"`
	Source       string         `json:"source"`
	Title        string         `json:"title"`
	Message      string         `json:"message"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	FirstSeenAt  time.Time      `json:"first_seen_at"`
	LastSeenAt   time.Time      `json:"last_seen_at"`
	Acknowledged bool           `json:"acknowledged"`
	Resolved     bool           `json:"resolved"`
}

// TrainingCounter tracks per-table ingestion volume for the Training
// Trigger (spec §3, §4.8).
type TrainingCounter struct {
	Table               string     `json:"table"`
	NewRowsSinceTraining int       `json:"new_rows_since_last_training"`
	LastTrainingAt       *time.Time `json:"last_training_at,omitempty"`
}
