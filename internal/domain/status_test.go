package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplicationCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{name: "pending to reviewed", from: ApplicationPending, to: ApplicationReviewed, want: true},
		{name: "pending to shortlisted", from: ApplicationPending, to: ApplicationShortlisted, want: true},
		{name: "pending to rejected", from: ApplicationPending, to: ApplicationRejected, want: true},
		{name: "pending to accepted", from: ApplicationPending, to: ApplicationAccepted, want: true},
		{name: "reviewed to shortlisted", from: ApplicationReviewed, to: ApplicationShortlisted, want: true},
		{name: "shortlisted to accepted", from: ApplicationShortlisted, to: ApplicationAccepted, want: true},
		{name: "interview scheduled to rejected", from: ApplicationInterviewScheduled, to: ApplicationRejected, want: true},
		{name: "interview completed to accepted", from: ApplicationInterviewCompleted, to: ApplicationAccepted, want: true},

		{name: "accepted is terminal", from: ApplicationAccepted, to: ApplicationReviewed, want: false},
		{name: "rejected is terminal", from: ApplicationRejected, to: ApplicationAccepted, want: false},
		{name: "no backwards transition", from: ApplicationShortlisted, to: ApplicationPending, want: false},
		{name: "interview scheduled not recruiter-settable", from: ApplicationPending, to: ApplicationInterviewScheduled, want: false},
		{name: "interview completed not recruiter-settable", from: ApplicationInterviewScheduled, to: ApplicationInterviewCompleted, want: false},
		{name: "unknown source status", from: "BOGUS", to: ApplicationAccepted, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplicationCanTransition(tt.from, tt.to))
		})
	}
}

func TestApplicationTerminal(t *testing.T) {
	assert.True(t, ApplicationTerminal(ApplicationAccepted))
	assert.True(t, ApplicationTerminal(ApplicationRejected))
	assert.False(t, ApplicationTerminal(ApplicationPending))
	assert.False(t, ApplicationTerminal(ApplicationInterviewScheduled))
}

func TestInterviewCanTransition(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want bool
	}{
		{name: "scheduled to confirmed", from: InterviewScheduled, to: InterviewConfirmed, want: true},
		{name: "scheduled to cancelled", from: InterviewScheduled, to: InterviewCancelled, want: true},
		{name: "scheduled to rescheduled", from: InterviewScheduled, to: InterviewRescheduled, want: true},
		{name: "confirmed to completed", from: InterviewConfirmed, to: InterviewCompleted, want: true},
		{name: "confirmed to cancelled", from: InterviewConfirmed, to: InterviewCancelled, want: true},
		{name: "rescheduled to confirmed", from: InterviewRescheduled, to: InterviewConfirmed, want: true},

		{name: "scheduled cannot jump to completed", from: InterviewScheduled, to: InterviewCompleted, want: false},
		{name: "completed is terminal", from: InterviewCompleted, to: InterviewCancelled, want: false},
		{name: "cancelled is terminal", from: InterviewCancelled, to: InterviewScheduled, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InterviewCanTransition(tt.from, tt.to))
		})
	}
}

func TestInterviewTerminal(t *testing.T) {
	assert.True(t, InterviewTerminal(InterviewCompleted))
	assert.True(t, InterviewTerminal(InterviewCancelled))
	assert.False(t, InterviewTerminal(InterviewScheduled))
	assert.False(t, InterviewTerminal(InterviewConfirmed))
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("job %s not found", "j1")))
	assert.Equal(t, KindConflict, KindOf(Conflict("already applied")))
	assert.Equal(t, KindInternal, KindOf(assert.AnError))
	assert.Equal(t, "internal error", MessageOf(assert.AnError))
	assert.Equal(t, "already applied", MessageOf(Conflict("already applied")))
}
