package mail

type FollowUpEmailData struct {
	Name    string
	Company string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
}
