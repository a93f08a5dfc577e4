package services

import "log"

// Mailer sends project and task email notifications.
type Mailer interface {
	SendTaskAssignment(userEmail, taskName, projectName string)
	SendProjectInvitation(userEmail, projectName, inviterName string)
}

// LogMailer writes notifications to the process log instead of delivering
// real mail. Deployments without an SMTP relay run with this implementation.
type LogMailer struct{}

// NewLogMailer creates a new LogMailer.
func NewLogMailer() *LogMailer {
	return &LogMailer{}
}

func (m *LogMailer) SendTaskAssignment(userEmail, taskName, projectName string) {
	log.Printf("mail to %s: task %q assigned to you in project %q", userEmail, taskName, projectName)
}

func (m *LogMailer) SendProjectInvitation(userEmail, projectName, inviterName string) {
	log.Printf("mail to %s: invited to project %q by %s", userEmail, projectName, inviterName)
}
