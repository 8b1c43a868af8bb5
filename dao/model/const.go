// Enum values are stored as their string form so that rows stay readable
// and the API can echo them without translation.
package model

// User role within an organization
type UserRole string

const (
	RoleSuperAdmin       UserRole = "SUPER_ADMIN"
	RolePortfolioManager UserRole = "PORTFOLIO_MANAGER"
	RoleProgramManager   UserRole = "PROGRAM_MANAGER"
	RoleProjectManager   UserRole = "PROJECT_MANAGER"
	RolePMO              UserRole = "PMO"
	RoleFinance          UserRole = "FINANCE"
	RoleResourceManager  UserRole = "RESOURCE_MANAGER"
	RoleClientViewer     UserRole = "CLIENT_VIEWER"
)

// Red / Amber / Green health classification
type RAGStatus string

const (
	RAGRed   RAGStatus = "RED"
	RAGAmber RAGStatus = "AMBER"
	RAGGreen RAGStatus = "GREEN"
)

type ProgramStatus string

const (
	ProgramPlanning  ProgramStatus = "PLANNING"
	ProgramActive    ProgramStatus = "ACTIVE"
	ProgramOnHold    ProgramStatus = "ON_HOLD"
	ProgramCompleted ProgramStatus = "COMPLETED"
	ProgramCancelled ProgramStatus = "CANCELLED"
)

type ProjectStatus string

const (
	ProjectDraft     ProjectStatus = "DRAFT"
	ProjectPlanning  ProjectStatus = "PLANNING"
	ProjectActive    ProjectStatus = "ACTIVE"
	ProjectOnHold    ProjectStatus = "ON_HOLD"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectCancelled ProjectStatus = "CANCELLED"
)

type TaskStatus string

const (
	TaskBacklog    TaskStatus = "BACKLOG"
	TaskTodo       TaskStatus = "TODO"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskInReview   TaskStatus = "IN_REVIEW"
	TaskDone       TaskStatus = "DONE"
	TaskBlocked    TaskStatus = "BLOCKED"
)

// TaskStatuses lists the kanban columns in board order.
var TaskStatuses = []TaskStatus{TaskBacklog, TaskTodo, TaskInProgress, TaskInReview, TaskDone, TaskBlocked}

type TaskPriority string

const (
	PriorityLow      TaskPriority = "LOW"
	PriorityMedium   TaskPriority = "MEDIUM"
	PriorityHigh     TaskPriority = "HIGH"
	PriorityCritical TaskPriority = "CRITICAL"
)

type MilestoneStatus string

const (
	MilestonePending   MilestoneStatus = "PENDING"
	MilestoneAchieved  MilestoneStatus = "ACHIEVED"
	MilestoneMissed    MilestoneStatus = "MISSED"
	MilestoneCancelled MilestoneStatus = "CANCELLED"
)

// Five-level likelihood scale of a risk
type RiskProbability string

const (
	ProbabilityVeryLow  RiskProbability = "VERY_LOW"
	ProbabilityLow      RiskProbability = "LOW"
	ProbabilityMedium   RiskProbability = "MEDIUM"
	ProbabilityHigh     RiskProbability = "HIGH"
	ProbabilityVeryHigh RiskProbability = "VERY_HIGH"
)

// RiskProbabilities is ordered from least to most likely.
var RiskProbabilities = []RiskProbability{
	ProbabilityVeryLow, ProbabilityLow, ProbabilityMedium, ProbabilityHigh, ProbabilityVeryHigh,
}

// Five-level consequence scale of a risk
type RiskImpact string

const (
	ImpactVeryLow  RiskImpact = "VERY_LOW"
	ImpactLow      RiskImpact = "LOW"
	ImpactMedium   RiskImpact = "MEDIUM"
	ImpactHigh     RiskImpact = "HIGH"
	ImpactCritical RiskImpact = "CRITICAL"
)

// RiskImpacts is ordered from least to most severe.
var RiskImpacts = []RiskImpact{ImpactVeryLow, ImpactLow, ImpactMedium, ImpactHigh, ImpactCritical}

type RiskStatus string

const (
	RiskOpen      RiskStatus = "OPEN"
	RiskMitigated RiskStatus = "MITIGATED"
	RiskAccepted  RiskStatus = "ACCEPTED"
	RiskClosed    RiskStatus = "CLOSED"
	RiskEscalated RiskStatus = "ESCALATED"
)

type IssueSeverity string

const (
	SeverityLow      IssueSeverity = "LOW"
	SeverityMedium   IssueSeverity = "MEDIUM"
	SeverityHigh     IssueSeverity = "HIGH"
	SeverityCritical IssueSeverity = "CRITICAL"
)

type IssueStatus string

const (
	IssueOpen       IssueStatus = "OPEN"
	IssueInProgress IssueStatus = "IN_PROGRESS"
	IssueResolved   IssueStatus = "RESOLVED"
	IssueClosed     IssueStatus = "CLOSED"
)

type BudgetType string

const (
	BudgetCapex BudgetType = "CAPEX"
	BudgetOpex  BudgetType = "OPEX"
)

type ChangeRequestStatus string

const (
	CRDraft       ChangeRequestStatus = "DRAFT"
	CRSubmitted   ChangeRequestStatus = "SUBMITTED"
	CRUnderReview ChangeRequestStatus = "UNDER_REVIEW"
	CRApproved    ChangeRequestStatus = "APPROVED"
	CRRejected    ChangeRequestStatus = "REJECTED"
	CRImplemented ChangeRequestStatus = "IMPLEMENTED"
)

// Decidable reports whether a change request may still be approved or rejected.
func (s ChangeRequestStatus) Decidable() bool {
	return s == CRSubmitted || s == CRUnderReview
}

type AuditAction string

const (
	AuditCreate AuditAction = "CREATE"
	AuditUpdate AuditAction = "UPDATE"
	AuditDelete AuditAction = "DELETE"
	AuditLogin  AuditAction = "LOGIN"
)
