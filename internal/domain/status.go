package domain

// Application statuses
const (
	ApplicationPending            = "PENDING"
	ApplicationReviewed           = "REVIEWED"
	ApplicationShortlisted        = "SHORTLISTED"
	ApplicationInterviewScheduled = "INTERVIEW_SCHEDULED"
	ApplicationInterviewCompleted = "INTERVIEW_COMPLETED"
	ApplicationRejected           = "REJECTED"
	ApplicationAccepted           = "ACCEPTED"
)

// Interview statuses
const (
	InterviewScheduled   = "SCHEDULED"
	InterviewConfirmed   = "CONFIRMED"
	InterviewCompleted   = "COMPLETED"
	InterviewCancelled   = "CANCELLED"
	InterviewRescheduled = "RESCHEDULED"
)

// Notification types
const (
	NotifyApplication = "APPLICATION"
	NotifyJob         = "JOB"
	NotifyInterview   = "INTERVIEW"
	NotifySystem      = "SYSTEM"
)

// applicationTransitions is the explicit guard table for application status
// changes driven by a recruiter. INTERVIEW_SCHEDULED and INTERVIEW_COMPLETED
// are system-driven from the interview service and are not reachable here.
var applicationTransitions = map[string]map[string]bool{
	ApplicationPending: {
		ApplicationReviewed:    true,
		ApplicationShortlisted: true,
		ApplicationRejected:    true,
		ApplicationAccepted:    true,
	},
	ApplicationReviewed: {
		ApplicationShortlisted: true,
		ApplicationRejected:    true,
		ApplicationAccepted:    true,
	},
	ApplicationShortlisted: {
		ApplicationRejected: true,
		ApplicationAccepted: true,
	},
	ApplicationInterviewScheduled: {
		ApplicationRejected: true,
		ApplicationAccepted: true,
	},
	ApplicationInterviewCompleted: {
		ApplicationRejected: true,
		ApplicationAccepted: true,
	},
}

// interviewTransitions is the explicit guard table for interview status
// changes.
var interviewTransitions = map[string]map[string]bool{
	InterviewScheduled: {
		InterviewConfirmed:   true,
		InterviewCancelled:   true,
		InterviewRescheduled: true,
	},
	InterviewConfirmed: {
		InterviewCompleted: true,
		InterviewCancelled: true,
	},
	InterviewRescheduled: {
		InterviewConfirmed:   true,
		InterviewCancelled:   true,
		InterviewRescheduled: true,
	},
}

// ApplicationStatusValid reports whether s is a known application status
func ApplicationStatusValid(s string) bool {
	switch s {
	case ApplicationPending, ApplicationReviewed, ApplicationShortlisted,
		ApplicationInterviewScheduled, ApplicationInterviewCompleted,
		ApplicationRejected, ApplicationAccepted:
		return true
	}
	return false
}

// ApplicationTerminal reports whether no further transition is permitted
func ApplicationTerminal(s string) bool {
	return s == ApplicationRejected || s == ApplicationAccepted
}

// ApplicationCanTransition reports whether a recruiter-driven transition
// from the current status to the target is legal.
func ApplicationCanTransition(from, to string) bool {
	return applicationTransitions[from][to]
}

// InterviewTerminal reports whether no further transition is permitted
func InterviewTerminal(s string) bool {
	return s == InterviewCompleted || s == InterviewCancelled
}

// InterviewCanTransition reports whether an interview transition is legal
func InterviewCanTransition(from, to string) bool {
	return interviewTransitions[from][to]
}
