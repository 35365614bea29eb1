package mailer

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// HTML is optional; Text is recommended as fallback.
type EmailJob struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// WelcomeJob builds the welcome email sent after a successful registration.
func WelcomeJob(to, name, appName string) EmailJob {
	return EmailJob{
		To:      to,
		Subject: "Welcome to " + appName,
		Text: "Hi " + name + ",\n\n" +
			"Your account is ready. Log in any time to start writing posts.\n\n" +
			"— " + appName,
	}
}
